package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/station/internal/config"
	"github.com/l1jgo/station/internal/core/ecs"
	"github.com/l1jgo/station/internal/core/event"
	"github.com/l1jgo/station/internal/core/nodetree"
	coresys "github.com/l1jgo/station/internal/core/system"
	"github.com/l1jgo/station/internal/data"
	"github.com/l1jgo/station/internal/persist"
	"github.com/l1jgo/station/internal/render"
	"github.com/l1jgo/station/internal/scripting"
	"github.com/l1jgo/station/internal/system"
)

// errQuit ends the loop from the terminal. It is not reported as a failure.
var errQuit = errors.New("quit requested")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("station starting",
		zap.String("name", cfg.Server.Name),
		zap.Duration("tick", cfg.Loop.TickRate),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. World, event bus and reconciler
	world := ecs.NewWorld()
	bus := event.NewBus()
	rec := nodetree.NewReconciler(world, log.Named("reconcile"))
	rec.SetBus(bus)
	catalog := data.DefaultCatalog()

	// 4. HUD source: Lua entry function, else YAML template
	build, closeHUD, err := hudBuilder(cfg.HUD, catalog, log)
	if err != nil {
		return err
	}
	defer closeHUD()

	// 5. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewHUDSystem(rec, build, cfg.HUD.Root, log.Named("hud")))
	runner.Register(system.NewReconcileSystem(rec, cfg.Scheduler.WarnPasses, log.Named("reconcile")))

	var screen tcell.Screen
	if cfg.Render.Enabled {
		screen, err = tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("terminal init: %w", err)
		}
		runner.Register(system.NewRenderSystem(world, render.NewTerminal(screen), cfg.HUD.Root))
	}
	fini := sync.OnceFunc(func() {
		if screen != nil {
			screen.Fini()
		}
	})
	defer fini()

	if cfg.Database.Enabled {
		db, err := openDatabase(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.Snapshot.IntervalTicks > 0 {
			repo := persist.NewSnapshotRepo(db)
			if n, err := repo.Count(ctx); err == nil {
				log.Info("snapshots stored", zap.Int("count", n))
			}
			snapshots := system.NewSnapshotSystem(world, repo, bus, cfg.Snapshot.IntervalTicks, log.Named("snapshot"))
			snapshots.SetRetention(cfg.Snapshot.Keep)
			runner.Register(snapshots)
		}
	}
	runner.Register(system.NewCleanupSystem(world, log))

	event.Subscribe(bus, func(e event.SnapshotSaved) {
		log.Debug("snapshot saved", zap.String("id", e.ID), zap.Int("nodes", e.Rows))
	})
	event.Subscribe(bus, func(e event.ChildDespawned) {
		log.Debug("subtree despawned", zap.Stringer("parent", e.Parent), zap.Int("count", e.Count))
	})

	// 6. Game loop, terminal input and shutdown
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop(ctx, runner, cfg.Loop.TickRate)
	})
	if screen != nil {
		g.Go(func() error {
			return pollInput(screen)
		})
		g.Go(func() error {
			// Fini unblocks PollEvent.
			<-ctx.Done()
			fini()
			return nil
		})
	}

	err = g.Wait()
	st := rec.Stats()
	log.Info("station stopped",
		zap.Uint64("ticks", runner.Ticks()),
		zap.Int("trees", st.Applied),
		zap.Int("spawned", st.Spawned),
		zap.Int("despawned", st.Despawned),
	)
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func hudBuilder(cfg config.HUDConfig, catalog *data.Catalog, log *zap.Logger) (system.BuildFunc, func(), error) {
	nop := func() {}
	if cfg.Entry != "" {
		engine, err := scripting.NewEngine(cfg.ScriptDir, catalog, log.Named("lua"))
		if err != nil {
			return nil, nop, fmt.Errorf("lua engine: %w", err)
		}
		if engine.Has(cfg.Entry) {
			log.Info("hud from lua", zap.String("entry", cfg.Entry))
			return system.LuaBuilder(engine, cfg.Entry), engine.Close, nil
		}
		engine.Close()
		log.Warn("lua hud entry not defined", zap.String("entry", cfg.Entry))
	}
	if cfg.Template != "" {
		table, err := data.LoadTemplates(cfg.Templates, catalog)
		if err != nil {
			return nil, nop, fmt.Errorf("hud templates: %w", err)
		}
		if table.Get(cfg.Template) != nil {
			log.Info("hud from template", zap.String("template", cfg.Template), zap.Int("templates", table.Count()))
			return system.TemplateBuilder(table, cfg.Template), nop, nil
		}
		log.Warn("hud template not found", zap.String("template", cfg.Template))
	}
	log.Info("hud falls back to the built-in clock")
	return system.ClockBuilder(), nop, nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*persist.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	version, err := persist.RunMigrations(ctx, db.Pool)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied", zap.Int64("version", version))
	return db, nil
}

func loop(ctx context.Context, runner *coresys.Runner, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runner.Tick(tick)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pollInput returns errQuit on Esc, Ctrl-C or q, and nil once the screen
// is finalized.
func pollInput(screen tcell.Screen) error {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return errQuit
			}
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
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
