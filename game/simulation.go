// Package game runs the colony: agents, food, trail fields and the tick clock.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/systems"
	"github.com/pthm-cable/trail/telemetry"
)

// ErrOutsideWorld is returned when an entity is placed outside the world.
var ErrOutsideWorld = errors.New("position outside world")

// Options configures a Simulation beyond what the config file holds.
type Options struct {
	Seed        int64
	Logger      *slog.Logger // nil uses slog.Default()
	LogStats    bool         // log window stats and bookmarks
	StatsWindow int          // ticks per stats window, 0 uses config
	OutputDir   string       // CSV and config output, empty disables
	Sequential  bool         // never use the worker pool

	// StatsCallback is called with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete colony state.
type Simulation struct {
	cfg    *config.Config
	world  *ecs.World
	rng    *rand.Rand
	logger *slog.Logger

	// Agent mappers
	agentMapper *ecs.Map3[components.Position, components.Rotation, components.Forager]
	agentFilter *ecs.Filter3[components.Position, components.Rotation, components.Forager]

	// Trail fields
	searching *systems.ScalarField
	found     *systems.ScalarField
	diffuse   float32

	env    *Environment
	senses systems.Senses
	params systems.ForageParams

	parallel *parallelState

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetime         *telemetry.LifetimeTracker
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	// State
	tick       int32
	nextID     uint32
	agentCount int
	delivered  int

	// Scratch for telemetry sampling
	foodScratch  []float64
	trailScratch []float64
}

// NewSimulation validates cfg and builds a colony with every agent at the
// nest. cfg is copied; later changes to it have no effect.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	cfg = cfg.Clone()
	cfg.Recompute()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	searching, err := systems.NewScalarFieldFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("searching field: %w", err)
	}
	found, err := systems.NewScalarFieldFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("found field: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		statsWindow = opts.StatsWindow
	}

	seed := uint64(opts.Seed)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	world := ecs.NewWorld()
	s := &Simulation{
		cfg:              cfg,
		world:            world,
		rng:              rng,
		logger:           logger,
		agentMapper:      ecs.NewMap3[components.Position, components.Rotation, components.Forager](world),
		agentFilter:      ecs.NewFilter3[components.Position, components.Rotation, components.Forager](world),
		searching:        searching,
		found:            found,
		diffuse:          float32(cfg.Field.Diffuse),
		params:           systems.ForageParamsFromConfig(cfg),
		collector:        telemetry.NewCollector(int32(statsWindow)),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		lifetime:         telemetry.NewLifetimeTracker(),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
	}

	workers := cfg.Physics.Workers
	if opts.Sequential {
		workers = 1
	}
	s.parallel = newParallelState(workers, cfg.Physics.ParallelThreshold)

	s.env = newEnvironment(world, cfg, rng, logger)
	s.senses = systems.Senses{
		Searching: searching,
		Found:     found,
		Nest:      s.env.Nest(),
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("output: %w", err)
		}
	}
	s.outputManager = om

	nest := s.env.Nest()
	for i := 0; i < cfg.Agent.Count; i++ {
		s.spawnAgent(nest.Position, systems.RandomHeading(rng), components.Searching)
	}

	logger.Info("simulation created",
		"seed", opts.Seed,
		"agents", s.agentCount,
		"food", s.env.Sources(),
		"grid_cols", cfg.Derived.GridCols,
		"grid_rows", cfg.Derived.GridRows,
	)

	return s, nil
}

// spawnAgent creates a forager with its own RNG stream and jittered speed.
func (s *Simulation) spawnAgent(pos components.Position, heading float64, state components.State) ecs.Entity {
	id := s.nextID
	s.nextID++

	agentRng := rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
	speed := s.cfg.Agent.Speed
	if jitter := s.cfg.Agent.SpeedJitter; jitter > 0 {
		speed += (s.rng.Float64()*2 - 1) * jitter
	}

	rot := components.Rotation{Heading: systems.NormalizeAngle(heading)}
	f := components.Forager{
		ID:    id,
		State: state,
		Speed: speed,
		Trail: make([]components.Position, 0, s.cfg.Agent.TrailLength),
		Rng:   agentRng,
	}
	if state == components.Returning {
		f.Carried = s.cfg.Agent.PickupAmount
	}

	entity := s.agentMapper.NewEntity(&pos, &rot, &f)
	s.agentCount++
	s.lifetime.Register(id, s.tick)
	return entity
}

// SpawnAgent adds a forager at (x, y). Agents are never removed.
func (s *Simulation) SpawnAgent(x, y, heading float64, state components.State) error {
	pos := components.Position{X: x, Y: y}
	if !s.env.contains(pos) {
		return fmt.Errorf("spawn agent at (%v,%v): %w", x, y, ErrOutsideWorld)
	}
	s.spawnAgent(pos, heading, state)
	return nil
}

// AddFood places a food source at (x, y) with the configured radius. It is
// visible to agents from the next tick.
func (s *Simulation) AddFood(x, y float64, quantity int) error {
	pos := components.Position{X: x, Y: y}
	if !s.env.contains(pos) {
		return fmt.Errorf("add food at (%v,%v): %w", x, y, ErrOutsideWorld)
	}
	if quantity <= 0 {
		return fmt.Errorf("add food: quantity must be > 0, got %d", quantity)
	}
	s.env.AddFood(pos, quantity, s.cfg.Food.Radius)
	s.env.rebuildIndex()
	return nil
}

// Step advances the simulation by deltaTicks ticks. Values <= 0 run one tick.
func (s *Simulation) Step(deltaTicks int) {
	if deltaTicks <= 0 {
		deltaTicks = 1
	}
	for i := 0; i < deltaTicks; i++ {
		s.simulationStep()
	}
}

// simulationStep runs a single tick.
func (s *Simulation) simulationStep() {
	s.perfCollector.StartTick()

	// 1. Sense, decide and move; then apply deposits and transitions
	s.perfCollector.StartPhase(telemetry.PhaseAgents)
	s.updateAgents()

	// 2. Decay each field exactly once
	s.perfCollector.StartPhase(telemetry.PhaseDecay)
	s.searching.Decay()
	s.found.Decay()
	if s.diffuse > 0 {
		s.searching.Diffuse(s.diffuse)
		s.found.Diffuse(s.diffuse)
	}

	// 3. Remove depleted food, respawn, rebuild the index
	s.perfCollector.StartPhase(telemetry.PhaseEnvironment)
	depleted, respawned := s.env.Update(s.tick)
	for range depleted {
		s.collector.RecordDepletion()
	}
	for range respawned {
		s.collector.RecordRespawn()
	}

	s.tick++

	// 4. Telemetry
	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perfCollector.EndTick()
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 { return s.tick }

// Delivered returns the total food units delivered to the nest.
func (s *Simulation) Delivered() int { return s.delivered }

// AgentCount returns the number of agents.
func (s *Simulation) AgentCount() int { return s.agentCount }

// FoodRemaining returns the total quantity left across all food sources.
func (s *Simulation) FoodRemaining() int { return s.env.Remaining() }

// FoodSources returns the number of live food sources.
func (s *Simulation) FoodSources() int { return s.env.Sources() }

// Config returns the simulation's configuration. It must not be modified.
func (s *Simulation) Config() *config.Config { return s.cfg }

// PerfStats returns timing statistics over the recent perf window.
func (s *Simulation) PerfStats() telemetry.PerfStats { return s.perfCollector.Stats() }

// RecordFrame marks a rendered frame for FPS accounting.
func (s *Simulation) RecordFrame() { s.perfCollector.RecordFrame() }

// Close stops the worker pool and flushes output files.
func (s *Simulation) Close() error {
	s.stopParallelWorkers()
	if s.outputManager == nil {
		return nil
	}
	err := s.outputManager.WriteForagers(s.lifetime, topForagers)
	if cerr := s.outputManager.Close(); err == nil {
		err = cerr
	}
	s.outputManager = nil
	return err
}
