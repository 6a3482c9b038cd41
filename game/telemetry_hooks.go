package game

import (
	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/telemetry"
)

// topForagers is the number of rows written to foragers.csv.
const topForagers = 20

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sample())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats(s.logger)
		perfStats.LogStats(s.logger)
	}

	// Write to CSV if output manager is enabled
	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			s.logger.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark(s.logger)
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				s.logger.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sample measures the colony at window end.
func (s *Simulation) sample() telemetry.Sample {
	var smp telemetry.Sample

	s.trailScratch = s.trailScratch[:0]
	query := s.agentFilter.Query()
	for query.Next() {
		pos, _, f := query.Get()
		if f.State == components.Searching {
			smp.Searching++
		} else {
			smp.Returning++
		}
		s.trailScratch = append(s.trailScratch, float64(s.found.Sample(pos.X, pos.Y)))
	}

	s.foodScratch = s.env.Quantities(s.foodScratch[:0])

	smp.Delivered = s.delivered
	smp.FoodQuantities = s.foodScratch
	smp.SearchingMass = s.searching.Total()
	smp.FoundMass = s.found.Total()
	smp.FoundMax = float64(s.found.Max())
	smp.TrailAtAgents = s.trailScratch
	return smp
}
