package main

import (
	"github.com/pthm-cable/trail/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable foraging parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Steering
			{Name: "explore_prob", Path: "agent.explore_prob", Min: 0.0, Max: 0.6, Default: 0.2,
				get: func(c *config.Config) float64 { return c.Agent.ExploreProb },
				set: func(c *config.Config, v float64) { c.Agent.ExploreProb = v }},
			{Name: "wander", Path: "agent.wander", Min: 0.05, Max: 1.2, Default: 0.35,
				get: func(c *config.Config) float64 { return c.Agent.Wander },
				set: func(c *config.Config, v float64) { c.Agent.Wander = v }},
			{Name: "max_turn", Path: "agent.max_turn", Min: 0.05, Max: 1.0, Default: 0.3,
				get: func(c *config.Config) float64 { return c.Agent.MaxTurn },
				set: func(c *config.Config, v float64) { c.Agent.MaxTurn = v }},
			{Name: "sensing_radius", Path: "agent.sensing_radius", Min: 5, Max: 60, Default: 25,
				get: func(c *config.Config) float64 { return c.Agent.SensingRadius },
				set: func(c *config.Config, v float64) { c.Agent.SensingRadius = v }},
			// Return blend
			{Name: "nest_weight", Path: "agent.nest_weight", Min: 0.0, Max: 2.0, Default: 1.0,
				get: func(c *config.Config) float64 { return c.Agent.NestWeight },
				set: func(c *config.Config, v float64) { c.Agent.NestWeight = v }},
			{Name: "trail_weight", Path: "agent.trail_weight", Min: 0.0, Max: 2.0, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Agent.TrailWeight },
				set: func(c *config.Config, v float64) { c.Agent.TrailWeight = v }},
			// Trails
			{Name: "deposit_searching", Path: "deposit.searching", Min: 0.0, Max: 20, Default: 5,
				get: func(c *config.Config) float64 { return c.Deposit.Searching },
				set: func(c *config.Config, v float64) { c.Deposit.Searching = v }},
			{Name: "deposit_found", Path: "deposit.found", Min: 1, Max: 80, Default: 25,
				get: func(c *config.Config) float64 { return c.Deposit.Found },
				set: func(c *config.Config, v float64) { c.Deposit.Found = v }},
			{Name: "retention", Path: "field.retention", Min: 0.9, Max: 0.999, Default: 0.99,
				get: func(c *config.Config) float64 { return c.Field.Retention },
				set: func(c *config.Config, v float64) { c.Field.Retention = v }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.get(cfg)
	}
	return out
}
