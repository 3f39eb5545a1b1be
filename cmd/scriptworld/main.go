package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/component"
	"github.com/l1jgo/scriptworld/internal/config"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/event"
	coresys "github.com/l1jgo/scriptworld/internal/core/system"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
	"github.com/l1jgo/scriptworld/internal/data"
	"github.com/l1jgo/scriptworld/internal/persist"
	"github.com/l1jgo/scriptworld/internal/scripting"
	"github.com/l1jgo/scriptworld/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/scriptworld.toml"
	if p := os.Getenv("SCRIPTWORLD_CONFIG"); p != "" {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. World, gate, registry
	printSection("World")
	reg := typereg.NewRegistry()
	if err := component.Register(reg); err != nil {
		return fmt.Errorf("register types: %w", err)
	}
	printStat("Registered types", reg.Len())

	ecsWorld := ecs.NewWorld()
	gate := bridge.NewGate(ecsWorld)
	bus := event.NewBus()
	sw := bridge.NewScriptWorld(gate, reg, log, bridge.WithEventBus(bus))

	event.Subscribe(bus, func(ev event.ScriptFailed) {
		log.Warn("script failure",
			zap.Uint32("sid", ev.SID),
			zap.String("script", ev.Script),
			zap.String("hook", ev.Hook))
	})

	// 4. Prefabs
	if cfg.Scripting.PrefabFile != "" {
		prefabs, err := data.LoadPrefabTable(cfg.Scripting.PrefabFile)
		if err != nil {
			return fmt.Errorf("load prefabs: %w", err)
		}
		ids, err := prefabs.SpawnStartup(sw)
		if err != nil {
			return fmt.Errorf("spawn prefabs: %w", err)
		}
		printStat("Prefabs", prefabs.Count())
		printStat("Spawned at boot", len(ids))
	}

	// 5. Optional PostgreSQL snapshots
	runner := coresys.NewRunner()
	var snapshots *system.SnapshotSystem
	if cfg.Database.Enabled {
		printSection("Database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		version, err := persist.RunMigrations(dbCtx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("Schema version %d", version))
		repo := persist.NewSnapshotRepo(db, cfg.Simulation.Name)
		snapshots = system.NewSnapshotSystem(sw, repo, log, cfg.Database.SnapshotEvery, cfg.Database.KeepSnapshots)
		runner.Register(snapshots)
	}

	// 6. Scripts
	printSection("Scripts")
	engine := scripting.NewEngine(sw, bus, log)
	defer engine.Close()
	if err := engine.LoadDir(cfg.Scripting.Dir); err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	printStat("Lua scripts", len(engine.Scripts()))

	// 7. Systems
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewScriptSystem(engine, log))
	runner.Register(system.NewClockSystem(gate))
	runner.Register(system.NewMovementSystem(gate))
	runner.Register(system.NewCleanupSystem(sw))

	// 8. Run the tick loop and the diagnostics reader side by side
	printSection("Running")
	printOK(fmt.Sprintf("Tick loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoop := context.WithCancel(gctx)
	defer stopLoop()

	g.Go(func() error {
		defer stopLoop()
		return tickLoop(loopCtx, runner, cfg.Simulation, log)
	})
	if cfg.Diagnostics.Interval > 0 {
		g.Go(func() error {
			return diagnostics(loopCtx, sw, cfg.Diagnostics.Interval, log)
		})
	}
	err = g.Wait()

	if snapshots != nil {
		snapshots.SaveNow()
	}
	log.Info("simulation stopped", zap.Uint64("ticks", runner.Ticks()))
	return err
}

// tickLoop drives the runner until ctx ends or max_ticks is reached.
func tickLoop(ctx context.Context, runner *coresys.Runner, cfg config.SimulationConfig, log *zap.Logger) error {
	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.TickRate)
			if cfg.MaxTicks > 0 && runner.Ticks() >= cfg.MaxTicks {
				log.Info("tick limit reached", zap.Uint64("max_ticks", cfg.MaxTicks))
				return nil
			}
		case <-ctx.Done():
			log.Info("shutdown requested")
			return nil
		}
	}
}

// diagnostics periodically reports world size from a second goroutine. It
// only ever takes the read side of the gate.
func diagnostics(ctx context.Context, sw *bridge.ScriptWorld, every time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	clock, _ := sw.TypeByName("Clock")
	for {
		select {
		case <-ticker.C:
			var entities int
			_ = sw.Gate().WithRead(func(w *ecs.World) error {
				entities = w.Len()
				return nil
			})
			fields := []zap.Field{zap.Int("entities", entities)}
			if dv, ok, err := sw.GetResource(clock); err == nil && ok {
				if tick, err := dv.Field("Tick"); err == nil {
					fields = append(fields, zap.Any("tick", tick))
				}
			}
			log.Info("world status", fields...)
		case <-ctx.Done():
			return nil
		}
	}
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
