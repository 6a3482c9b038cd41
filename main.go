package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/game"
	"github.com/pthm-cable/trail/renderer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml or config.toml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	debug := flag.Bool("debug", false, "Log food depletion and respawn events")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := game.Options{
		Seed:        rngSeed,
		Logger:      logger,
		LogStats:    *logStats,
		StatsWindow: *statsWindow,
		OutputDir:   *outputDir,
	}

	sim, err := game.NewSimulation(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer func() {
		sim.LogWorldState()
		if err := sim.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	if *headless {
		runHeadless(sim, *maxTicks, *stepsPerUpdate)
		return
	}
	runWindowed(sim, cfg, *maxTicks, *stepsPerUpdate)
}

// runHeadless steps the simulation as fast as possible.
func runHeadless(sim *game.Simulation, maxTicks, stepsPerUpdate int) {
	slog.Info("starting headless simulation",
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
	)

	for {
		steps := stepsPerUpdate
		if maxTicks > 0 {
			steps = min(steps, maxTicks-int(sim.Tick()))
		}
		sim.Step(steps)

		if maxTicks > 0 && int(sim.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", sim.Tick(), "delivered", sim.Delivered())
			sim.LogPerfStats()
			return
		}
	}
}

// runWindowed opens a raylib window and draws a snapshot every frame.
func runWindowed(sim *game.Simulation, cfg *config.Config, maxTicks, stepsPerUpdate int) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Trail")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	viewer := renderer.NewViewer(cfg.Screen.Width, cfg.Screen.Height, cfg.World.Width, cfg.World.Height, stepsPerUpdate)
	defer viewer.Unload()

	for !rl.WindowShouldClose() {
		viewer.HandleInput()
		if !viewer.Paused {
			sim.Step(viewer.StepsPerUpdate)
		}
		sim.RecordFrame()

		snap := sim.Snapshot()
		viewer.Draw(&snap, sim.PerfStats())

		if maxTicks > 0 && int(sim.Tick()) >= maxTicks {
			break
		}
	}
}
