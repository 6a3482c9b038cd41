package game

import (
	"time"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/telemetry"
)

// LogWorldState logs a one-line summary of the colony.
func (s *Simulation) LogWorldState() {
	var searching, returning, carried int
	var speedSum float64

	query := s.agentFilter.Query()
	for query.Next() {
		_, _, f := query.Get()
		if f.State == components.Searching {
			searching++
		} else {
			returning++
			carried += f.Carried
		}
		speedSum += f.Speed
	}

	var meanSpeed float64
	if s.agentCount > 0 {
		meanSpeed = speedSum / float64(s.agentCount)
	}

	s.logger.Info("world",
		"tick", s.tick,
		"agents", s.agentCount,
		"searching", searching,
		"returning", returning,
		"carried", carried,
		"delivered", s.delivered,
		"mean_speed", meanSpeed,
		"food_sources", s.env.Sources(),
		"food_remaining", s.env.Remaining(),
		"pending_respawns", s.env.PendingRespawns(),
		"searching_mass", s.searching.Total(),
		"found_mass", s.found.Total(),
	)
}

// LogPerfStats logs per-phase timings over the recent perf window.
func (s *Simulation) LogPerfStats() {
	stats := s.perfCollector.Stats()
	s.logger.Info("perf",
		"tick", s.tick,
		"avg_tick", stats.AvgTickDuration.Round(time.Microsecond).String(),
		"ticks_per_sec", int(stats.TicksPerSecond),
		"agents_pct", stats.PhasePct[telemetry.PhaseAgents],
		"apply_pct", stats.PhasePct[telemetry.PhaseApply],
		"decay_pct", stats.PhasePct[telemetry.PhaseDecay],
		"environment_pct", stats.PhasePct[telemetry.PhaseEnvironment],
	)
}
