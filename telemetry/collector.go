// Package telemetry provides colony statistics, milestones and CSV output.
package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	pickups       int
	failedPickups int
	deliveries    int
	depletions    int
	respawns      int

	// Return-trip lengths of this window's deliveries
	tripTicks []float64
}

// Sample is the colony state measured at window end.
type Sample struct {
	Searching, Returning int
	Delivered            int // lifetime total

	// Remaining quantity per live food source
	FoodQuantities []float64

	SearchingMass float64
	FoundMass     float64
	FoundMax      float64

	// Found-trail concentration under each agent
	TrailAtAgents []float64
}

// NewCollector creates a new stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: windowTicks}
}

// RecordPickup records a successful pickup.
func (c *Collector) RecordPickup() {
	c.pickups++
}

// RecordFailedPickup records a pickup where every candidate was already empty.
func (c *Collector) RecordFailedPickup() {
	c.failedPickups++
}

// RecordDelivery records a delivery at the nest. tripTicks is the time since
// the matching pickup, or negative if unknown.
func (c *Collector) RecordDelivery(tripTicks int32) {
	c.deliveries++
	if tripTicks >= 0 {
		c.tripTicks = append(c.tripTicks, float64(tripTicks))
	}
}

// RecordDepletion records a food source being emptied and removed.
func (c *Collector) RecordDepletion() {
	c.depletions++
}

// RecordRespawn records a new food source.
func (c *Collector) RecordRespawn() {
	c.respawns++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	agents := s.Searching + s.Returning
	ticks := currentTick - c.windowStartTick

	var rate float64
	if agents > 0 && ticks > 0 {
		rate = float64(c.deliveries) / float64(agents) / float64(ticks) * 1000
	}

	_, _, foodP50, _ := ComputeDistribution(s.FoodQuantities)
	trailMean, trailStd, _, trailP90 := ComputeDistribution(s.TrailAtAgents)
	tripMean, _, tripP50, _ := ComputeDistribution(c.tripTicks)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Searching: s.Searching,
		Returning: s.Returning,
		Delivered: s.Delivered,

		Pickups:       c.pickups,
		FailedPickups: c.failedPickups,
		Deliveries:    c.deliveries,
		Depletions:    c.depletions,
		Respawns:      c.respawns,
		DeliveryRate:  rate,
		TripMean:      tripMean,
		TripP50:       tripP50,

		FoodSources:   len(s.FoodQuantities),
		FoodRemaining: Sum(s.FoodQuantities),
		FoodP50:       foodP50,

		SearchingMass: s.SearchingMass,
		FoundMass:     s.FoundMass,
		FoundMax:      s.FoundMax,

		TrailMean: trailMean,
		TrailStd:  trailStd,
		TrailP90:  trailP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.pickups = 0
	c.failedPickups = 0
	c.deliveries = 0
	c.depletions = 0
	c.respawns = 0
	c.tripTicks = c.tripTicks[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
