package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/game"
	"github.com/pthm-cable/trail/telemetry"
)

// warmupWindows are skipped when scoring: trails take a while to form.
const warmupWindows = 2

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int
	logger      *slog.Logger

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, statsWindow int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: statsWindow,
		logger:      slog.New(slog.DiscardHandler),
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated delivery rate, scaled up for steady delivery.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		return 0
	}

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(cfg, s)
			rate, quality := scoreWindows(windows)
			results[idx] = seedResult{
				fitness: -rate * (1 + 0.2*quality),
				quality: quality,
				windows: windows,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality float64
	best := 0
	for i, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < results[best].fitness {
			best = i
		}
	}

	n := float64(len(results))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = results[best].windows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run and returns its windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	var windows []telemetry.WindowStats

	sim, err := game.NewSimulation(cfg, game.Options{
		Seed:        seed,
		Logger:      fe.logger,
		StatsWindow: fe.statsWindow,
		Sequential:  true, // seeds already run in parallel
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil
	}
	defer sim.Close()

	sim.Step(int(fe.maxTicks))
	return windows
}

// scoreWindows returns the mean delivery rate after warmup and a quality in
// [0, 1] that rewards a steady rate (1 - coefficient of variation).
func scoreWindows(windows []telemetry.WindowStats) (rate, quality float64) {
	if len(windows) <= warmupWindows {
		return 0, 0
	}
	rates := make([]float64, 0, len(windows)-warmupWindows)
	for _, w := range windows[warmupWindows:] {
		rates = append(rates, w.DeliveryRate)
	}

	if len(rates) == 1 {
		return rates[0], 0
	}
	mean, std := stat.MeanStdDev(rates, nil)
	if mean <= 0 {
		return 0, 0
	}
	quality = 1 - std/mean
	return mean, min(max(quality, 0), 1)
}
