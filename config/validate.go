package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a single invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Validate checks every parameter and returns all problems joined together.
// A nil result means the configuration can build a simulation.
func (c *Config) Validate() error {
	var errs []error

	if !finitePositive(c.World.Width) {
		errs = append(errs, invalid("world.width", "must be > 0, got %v", c.World.Width))
	}
	if !finitePositive(c.World.Height) {
		errs = append(errs, invalid("world.height", "must be > 0, got %v", c.World.Height))
	}

	// Field
	if !finitePositive(c.Field.CellSize) {
		errs = append(errs, invalid("field.cell_size", "must be > 0, got %v", c.Field.CellSize))
	}
	// Fields store retention as float32; it must stay below 1 after rounding
	if k := float32(c.Field.Retention); !(c.Field.Retention > 0 && k > 0 && k < 1) {
		errs = append(errs, invalid("field.retention", "must be in (0,1), got %v", c.Field.Retention))
	}
	if c.Field.Epsilon < 0 || math.IsNaN(c.Field.Epsilon) {
		errs = append(errs, invalid("field.epsilon", "must be >= 0, got %v", c.Field.Epsilon))
	}
	if c.Field.Diffuse < 0 || c.Field.Diffuse > 0.25 {
		errs = append(errs, invalid("field.diffuse", "must be in [0,0.25], got %v", c.Field.Diffuse))
	}

	// Agents
	if c.Agent.Count < 0 {
		errs = append(errs, invalid("agent.count", "must be >= 0, got %d", c.Agent.Count))
	}
	if c.Agent.Speed < 0 || math.IsNaN(c.Agent.Speed) {
		errs = append(errs, invalid("agent.speed", "must be >= 0, got %v", c.Agent.Speed))
	}
	if c.Agent.SpeedJitter < 0 || c.Agent.SpeedJitter > c.Agent.Speed {
		errs = append(errs, invalid("agent.speed_jitter", "must be in [0,speed], got %v", c.Agent.SpeedJitter))
	}
	if c.Agent.ExploreProb < 0 || c.Agent.ExploreProb > 1 {
		errs = append(errs, invalid("agent.explore_prob", "must be in [0,1], got %v", c.Agent.ExploreProb))
	}
	// Explorers and trail-less searchers turn only by wander
	if !finitePositive(c.Agent.Wander) {
		errs = append(errs, invalid("agent.wander", "must be > 0, got %v", c.Agent.Wander))
	}
	if !finitePositive(c.Agent.MaxTurn) {
		errs = append(errs, invalid("agent.max_turn", "must be > 0, got %v", c.Agent.MaxTurn))
	}
	if c.Agent.SensingRadius < 0 {
		errs = append(errs, invalid("agent.sensing_radius", "must be >= 0, got %v", c.Agent.SensingRadius))
	}
	if c.Agent.SampleRadius < 1 {
		errs = append(errs, invalid("agent.sample_radius", "must be >= 1, got %d", c.Agent.SampleRadius))
	}
	if c.Agent.NestWeight < 0 || c.Agent.TrailWeight < 0 {
		errs = append(errs, invalid("agent.nest_weight", "steering weights must be >= 0"))
	}
	if c.Agent.TrailLength < 0 {
		errs = append(errs, invalid("agent.trail_length", "must be >= 0, got %d", c.Agent.TrailLength))
	}
	if c.Agent.ReturnTrail != TrailFound && c.Agent.ReturnTrail != TrailSearching {
		errs = append(errs, invalid("agent.return_trail", "unknown trail %q", c.Agent.ReturnTrail))
	}
	if c.Agent.PickupAmount < 1 {
		errs = append(errs, invalid("agent.pickup_amount", "must be >= 1, got %d", c.Agent.PickupAmount))
	}

	if c.Deposit.Searching < 0 || c.Deposit.Found < 0 {
		errs = append(errs, invalid("deposit", "strengths must be >= 0"))
	}

	// Food
	if c.Food.Count < 0 {
		errs = append(errs, invalid("food.count", "must be >= 0, got %d", c.Food.Count))
	}
	if c.Food.Quantity < 0 || (c.Food.Count > 0 && c.Food.Quantity < 1) {
		errs = append(errs, invalid("food.quantity", "must be >= 1 when food.count > 0, got %d", c.Food.Quantity))
	}
	if c.Food.Radius < 0 {
		errs = append(errs, invalid("food.radius", "must be >= 0, got %v", c.Food.Radius))
	}
	if c.Food.Margin < 0 || 2*c.Food.Margin >= c.World.Width || 2*c.Food.Margin >= c.World.Height {
		errs = append(errs, invalid("food.margin", "must leave room inside the world, got %v", c.Food.Margin))
	}
	switch c.Food.Respawn {
	case RespawnNone, RespawnRandom:
	case RespawnNoise:
		if !finitePositive(c.Food.NoiseScale) {
			errs = append(errs, invalid("food.noise_scale", "must be > 0 for noise respawn, got %v", c.Food.NoiseScale))
		}
		if c.Food.NoiseCandidates < 1 {
			errs = append(errs, invalid("food.noise_candidates", "must be >= 1, got %d", c.Food.NoiseCandidates))
		}
	default:
		errs = append(errs, invalid("food.respawn", "unknown policy %q", c.Food.Respawn))
	}
	if c.Food.RespawnDelay < 0 {
		errs = append(errs, invalid("food.respawn_delay", "must be >= 0, got %d", c.Food.RespawnDelay))
	}

	// Nest
	if c.Nest.Radius < 0 {
		errs = append(errs, invalid("nest.radius", "must be >= 0, got %v", c.Nest.Radius))
	}
	if c.Derived.NestX >= c.World.Width || c.Derived.NestY >= c.World.Height {
		errs = append(errs, invalid("nest", "position (%v,%v) outside world", c.Derived.NestX, c.Derived.NestY))
	}

	if c.Index.MaxItems < 1 {
		errs = append(errs, invalid("index.max_items", "must be >= 1, got %d", c.Index.MaxItems))
	}
	if c.Index.MaxDepth < 0 {
		errs = append(errs, invalid("index.max_depth", "must be >= 0, got %d", c.Index.MaxDepth))
	}

	if c.Physics.Workers < 0 {
		errs = append(errs, invalid("physics.workers", "must be >= 0, got %d", c.Physics.Workers))
	}

	return errors.Join(errs...)
}
