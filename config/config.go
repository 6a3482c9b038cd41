// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen" toml:"screen"`
	World     WorldConfig     `yaml:"world" toml:"world"`
	Field     FieldConfig     `yaml:"field" toml:"field"`
	Agent     AgentConfig     `yaml:"agent" toml:"agent"`
	Deposit   DepositConfig   `yaml:"deposit" toml:"deposit"`
	Food      FoodConfig      `yaml:"food" toml:"food"`
	Nest      NestConfig      `yaml:"nest" toml:"nest"`
	Index     IndexConfig     `yaml:"index" toml:"index"`
	Physics   PhysicsConfig   `yaml:"physics" toml:"physics"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// ScreenConfig holds display settings for the optional viewer.
type ScreenConfig struct {
	Width     int `yaml:"width" toml:"width"`
	Height    int `yaml:"height" toml:"height"`
	TargetFPS int `yaml:"target_fps" toml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// FieldConfig holds pheromone field parameters.
type FieldConfig struct {
	CellSize  float64 `yaml:"cell_size" toml:"cell_size"`
	Retention float64 `yaml:"retention" toml:"retention"` // Multiplier applied every tick, in (0,1)
	Epsilon   float64 `yaml:"epsilon" toml:"epsilon"`     // Values below this snap to zero after decay
	Diffuse   float64 `yaml:"diffuse" toml:"diffuse"`     // Laplacian diffusion per tick (0 disables)
}

// AgentConfig holds forager parameters.
type AgentConfig struct {
	Count         int     `yaml:"count" toml:"count"`
	Speed         float64 `yaml:"speed" toml:"speed"`
	SpeedJitter   float64 `yaml:"speed_jitter" toml:"speed_jitter"`     // Per-agent speed drawn from speed ± jitter
	ExploreProb   float64 `yaml:"explore_prob" toml:"explore_prob"`     // Chance per tick to ignore the field
	Wander        float64 `yaml:"wander" toml:"wander"`                 // Max random heading perturbation (rad)
	MaxTurn       float64 `yaml:"max_turn" toml:"max_turn"`             // Max steering change per tick (rad)
	SensingRadius float64 `yaml:"sensing_radius" toml:"sensing_radius"` // Food detection distance
	SampleRadius  int     `yaml:"sample_radius" toml:"sample_radius"`   // Neighborhood radius in cells (1 = 8 neighbors)
	NestWeight    float64 `yaml:"nest_weight" toml:"nest_weight"`
	TrailWeight   float64 `yaml:"trail_weight" toml:"trail_weight"`
	TrailLength   int     `yaml:"trail_length" toml:"trail_length"` // Recent positions remembered (0 disables)
	ReturnTrail   string  `yaml:"return_trail" toml:"return_trail"` // "found" or "searching"
	PickupAmount  int     `yaml:"pickup_amount" toml:"pickup_amount"`
}

// DepositConfig holds trail deposit strengths per state.
type DepositConfig struct {
	Searching float64 `yaml:"searching" toml:"searching"`
	Found     float64 `yaml:"found" toml:"found"`
}

// FoodConfig holds food source placement and respawn parameters.
type FoodConfig struct {
	Count           int     `yaml:"count" toml:"count"`
	Quantity        int     `yaml:"quantity" toml:"quantity"`
	Radius          float64 `yaml:"radius" toml:"radius"`
	Margin          float64 `yaml:"margin" toml:"margin"`                     // Keep-out distance from world edges
	Respawn         string  `yaml:"respawn" toml:"respawn"`                   // none, random, noise
	RespawnDelay    int     `yaml:"respawn_delay" toml:"respawn_delay"`       // Ticks after depletion before a replacement
	NoiseScale      float64 `yaml:"noise_scale" toml:"noise_scale"`           // Perlin frequency per world unit
	NoiseCandidates int     `yaml:"noise_candidates" toml:"noise_candidates"` // Candidate sites scored per respawn
}

// NestConfig holds the nest position. Negative coordinates mean world center.
type NestConfig struct {
	X      float64 `yaml:"x" toml:"x"`
	Y      float64 `yaml:"y" toml:"y"`
	Radius float64 `yaml:"radius" toml:"radius"`
}

// IndexConfig holds quadtree subdivision parameters.
type IndexConfig struct {
	MaxItems int `yaml:"max_items" toml:"max_items"`
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`
}

// PhysicsConfig holds tick scheduling parameters.
type PhysicsConfig struct {
	Workers           int `yaml:"workers" toml:"workers"`                       // 0 = GOMAXPROCS
	ParallelThreshold int `yaml:"parallel_threshold" toml:"parallel_threshold"` // Agent count at which workers kick in
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window" toml:"stats_window"` // Ticks per stats window
	PerfWindow  int `yaml:"perf_window" toml:"perf_window"`   // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NestX, NestY float64 // Resolved nest position
	GridCols     int     // ceil(World.Width / Field.CellSize)
	GridRows     int     // ceil(World.Height / Field.CellSize)
}

// Respawn policies.
const (
	RespawnNone   = "none"
	RespawnRandom = "random"
	RespawnNoise  = "noise"
)

// Return trail choices.
const (
	TrailFound     = "found"
	TrailSearching = "searching"
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	cfg.computeDerived()
	return cfg
}

// Load loads configuration from a YAML or TOML file, merging with embedded defaults.
// The format is chosen by extension (.toml, anything else is YAML).
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing toml config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.NestX = c.Nest.X
	c.Derived.NestY = c.Nest.Y
	if c.Nest.X < 0 {
		c.Derived.NestX = c.World.Width / 2
	}
	if c.Nest.Y < 0 {
		c.Derived.NestY = c.World.Height / 2
	}

	if c.Field.CellSize > 0 {
		c.Derived.GridCols = int(math.Ceil(c.World.Width / c.Field.CellSize))
		c.Derived.GridRows = int(math.Ceil(c.World.Height / c.Field.CellSize))
	}

	if c.Food.Respawn == "" {
		c.Food.Respawn = RespawnNone
	}
	if c.Agent.ReturnTrail == "" {
		c.Agent.ReturnTrail = TrailFound
	}
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() {
	c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
