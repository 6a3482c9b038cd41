package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a stats window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Colony state at window end
	Searching int `csv:"searching"`
	Returning int `csv:"returning"`
	Delivered int `csv:"delivered_total"`

	// Events during window
	Pickups       int `csv:"pickups"`
	FailedPickups int `csv:"failed_pickups"` // every candidate already emptied this tick
	Deliveries    int `csv:"deliveries"`
	Depletions    int `csv:"depletions"`
	Respawns      int `csv:"respawns"`

	// Deliveries per agent per 1000 ticks
	DeliveryRate float64 `csv:"delivery_rate"`

	// Pickup-to-delivery ticks for this window's deliveries
	TripMean float64 `csv:"trip_mean"`
	TripP50  float64 `csv:"trip_p50"`

	// Food (sampled at window end)
	FoodSources   int     `csv:"food_sources"`
	FoodRemaining float64 `csv:"food_remaining"`
	FoodP50       float64 `csv:"food_p50"`

	// Trail fields
	SearchingMass float64 `csv:"searching_mass"`
	FoundMass     float64 `csv:"found_mass"`
	FoundMax      float64 `csv:"found_max"`

	// Found-trail intensity under agents
	TrailMean float64 `csv:"trail_mean"`
	TrailStd  float64 `csv:"trail_std"`
	TrailP90  float64 `csv:"trail_p90"`
}

// Percentile returns the empirical p-quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, sample std, median and p90.
// values is not modified.
func ComputeDistribution(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p50, p90
}

// Sum returns the total of values, 0 for an empty slice.
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("searching", s.Searching),
		slog.Int("returning", s.Returning),
		slog.Int("delivered_total", s.Delivered),
		slog.Int("pickups", s.Pickups),
		slog.Int("failed_pickups", s.FailedPickups),
		slog.Int("deliveries", s.Deliveries),
		slog.Int("depletions", s.Depletions),
		slog.Int("respawns", s.Respawns),
		slog.Float64("delivery_rate", s.DeliveryRate),
		slog.Float64("trip_mean", s.TripMean),
		slog.Float64("trip_p50", s.TripP50),
		slog.Int("food_sources", s.FoodSources),
		slog.Float64("food_remaining", s.FoodRemaining),
		slog.Float64("food_p50", s.FoodP50),
		slog.Float64("searching_mass", s.SearchingMass),
		slog.Float64("found_mass", s.FoundMass),
		slog.Float64("found_max", s.FoundMax),
		slog.Float64("trail_mean", s.TrailMean),
		slog.Float64("trail_std", s.TrailStd),
		slog.Float64("trail_p90", s.TrailP90),
	)
}

// LogStats logs the window stats using logger.
func (s WindowStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats",
		"window_end", s.WindowEndTick,
		"searching", s.Searching,
		"returning", s.Returning,
		"delivered_total", s.Delivered,
		"pickups", s.Pickups,
		"deliveries", s.Deliveries,
		"depletions", s.Depletions,
		"respawns", s.Respawns,
		"delivery_rate", s.DeliveryRate,
		"trip_mean", s.TripMean,
		"food_sources", s.FoodSources,
		"food_remaining", s.FoodRemaining,
		"searching_mass", s.SearchingMass,
		"found_mass", s.FoundMass,
		"trail_mean", s.TrailMean,
	)
}
