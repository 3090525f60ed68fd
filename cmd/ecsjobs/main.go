package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/ecsjobs/internal/config"
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/core/event"
	coresys "github.com/l1jgo/ecsjobs/internal/core/system"
	"github.com/l1jgo/ecsjobs/internal/data"
	"github.com/l1jgo/ecsjobs/internal/jobs"
	"github.com/l1jgo/ecsjobs/internal/jobs/safety"
	"github.com/l1jgo/ecsjobs/internal/jobs/sched"
	"github.com/l1jgo/ecsjobs/internal/scripting"
	"github.com/l1jgo/ecsjobs/internal/system"
	"github.com/l1jgo/ecsjobs/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             ecsjobs  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      parallel-for jobs over an ECS        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	s := fmt.Sprint(value)
	dotsLen := max(42-len(label)-len(s), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), s)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Pipeline ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/ecsjobs.toml"
	if p := os.Getenv("ECSJOBS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if stop := startProfile(cfg.Profile); stop != nil {
		defer stop()
	}

	printBanner()

	// 3. Build the world from the spawn list
	printSection("World")
	spawns, err := data.LoadSpawnList(cfg.World.SpawnList)
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}
	ecsWorld := ecs.NewWorld(cfg.World.Capacity)
	printStat("Spawn groups", len(spawns.Groups))
	printStat("Entities", world.Populate(ecsWorld, spawns))
	printStat("Column capacity", ecsWorld.Capacity())

	// 4. Load Lua tuning scripts
	luaEngine, err := scripting.NewEngine(cfg.World.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("init lua: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua scripts loaded")

	// 5. Register systems
	printSection("Systems")
	pipeline := coresys.NewPipeline(ecsWorld)
	if cfg.Pipeline.World != "" {
		pipeline.AddWorld(cfg.Pipeline.World, ecsWorld)
	}
	bus := event.NewBus()
	stats := system.NewJobStats(bus)

	var scheduler sched.Scheduler
	if cfg.Jobs.Inline {
		scheduler = sched.Inline{}
		printStat("Scheduler", "inline")
	} else {
		pool := sched.NewPool(cfg.Jobs.Workers, log)
		scheduler = pool
		printStat("Workers", pool.Workers())
	}
	printStat("Chunk size", cfg.Jobs.ChunkSize)
	printStat("Safety checks", safety.Enabled)

	opts := jobs.Options{
		WorldName: cfg.Pipeline.World,
		ChunkSize: cfg.Jobs.ChunkSize,
		Scheduler: scheduler,
		Bus:       bus,
		Log:       log,
	}
	expire := system.NewExpireSystem(ecsWorld, bus)
	cleanup := system.NewCleanupSystem(ecsWorld, log)

	runner := coresys.NewRunner(pipeline, log)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewLifetimeSystem(opts))
	runner.Register(system.NewMovementSystem(opts, luaEngine))
	runner.Register(system.NewBoundsSystem(opts))
	runner.Register(system.NewRegenSystem(opts, luaEngine))
	runner.Register(expire)
	runner.Register(cleanup)
	if err := runner.Init(); err != nil {
		return fmt.Errorf("init systems: %w", err)
	}
	defer runner.Destroy()
	printOK("Systems initialised")

	// 6. Start the tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Pipeline.TickRate)
	defer ticker.Stop()

	printSection("Running")
	printReady(fmt.Sprintf("tick %s", cfg.Pipeline.TickRate))
	if cfg.Pipeline.Ticks > 0 {
		printReady(fmt.Sprintf("stopping after %d ticks", cfg.Pipeline.Ticks))
	}
	fmt.Println()

	start := time.Now()
	ticks := 0
loop:
	for {
		select {
		case <-ticker.C:
			if err := runner.Tick(cfg.Pipeline.TickRate); err != nil {
				return fmt.Errorf("tick %d: %w", ticks, err)
			}
			ticks++
			if cfg.Pipeline.Ticks > 0 && ticks >= cfg.Pipeline.Ticks {
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			break loop
		}
	}

	printSection("Summary")
	printStat("Ticks", ticks)
	printStat("Wall time", time.Since(start).Round(time.Millisecond))
	printStat("Expired", expire.Expired())
	printStat("Destroyed", cleanup.Destroyed())
	printStat("Alive", ecsWorld.Entities().Count())
	stats.Each(func(name string, t system.JobTotals) {
		var avg time.Duration
		if t.Dispatches > 0 {
			avg = t.Elapsed / time.Duration(t.Dispatches)
		}
		log.Info("job system",
			zap.String("name", name),
			zap.Int("dispatches", t.Dispatches),
			zap.Int("entities", t.Entities),
			zap.Duration("avg", avg),
		)
	})
	log.Info("pipeline stopped")
	return nil
}

// startProfile starts the profiler selected by cfg and returns its stop
// function, or nil when profiling is off.
func startProfile(cfg config.ProfileConfig) func() {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return nil
	}
	p := profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	return p.Stop
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
