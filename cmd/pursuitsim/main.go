package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/pursuit/internal/actor"
	"github.com/udisondev/pursuit/internal/agent"
	"github.com/udisondev/pursuit/internal/ai"
	"github.com/udisondev/pursuit/internal/config"
	"github.com/udisondev/pursuit/internal/db"
	"github.com/udisondev/pursuit/internal/debugfeed"
	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/spawn"
	"github.com/udisondev/pursuit/internal/world"
)

const ConfigPath = "config/pursuitsim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("PURSUIT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("pursuit simulation starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"frame_rate", cfg.FrameRate,
		"database", cfg.Database.Enabled,
		"debug_feed", cfg.DebugFeed.Enabled)

	registry := world.NewRegistry()
	markers := model.NewMarkerPool()

	movers, err := seedTargets(cfg, registry, markers)
	if err != nil {
		return fmt.Errorf("seeding targets: %w", err)
	}
	slog.Info("targets seeded", "count", registry.TargetCount(), "moving", len(movers))

	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	aiMgr := ai.NewTickManager(cfg.FrameRate)
	spawnMgr := spawn.NewManager(repos, registry, markers, cfg.Agent, aiMgr)

	aiMgr.AddFrameHook(func(_ uint64, dt time.Duration) {
		for _, m := range movers {
			m.Step(dt.Seconds())
		}
	})

	var hub *debugfeed.Hub
	if cfg.DebugFeed.Enabled {
		hub = debugfeed.NewHub()
		every := uint64(cfg.DebugFeed.PublishEvery)
		aiMgr.AddFrameHook(func(frame uint64, _ time.Duration) {
			if frame%every != 0 {
				return
			}
			agents := spawnMgr.Agents()
			snapshots := make([]agent.Snapshot, 0, len(agents))
			for _, a := range agents {
				snapshots = append(snapshots, a.Snapshot())
			}
			if err := hub.Publish(frame, snapshots); err != nil {
				slog.Warn("publishing debug frame", "frame", frame, "error", err)
			}
		})
	}

	if err := spawnMgr.LoadSpawns(ctx); err != nil {
		return fmt.Errorf("loading spawns: %w", err)
	}
	if err := spawnMgr.SpawnAll(ctx); err != nil {
		// partial spawns keep running
		slog.Warn("some agents failed to spawn", "error", err)
	}
	defer spawnMgr.DespawnAll()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting AI tick manager", "frameRate", cfg.FrameRate, "agents", spawnMgr.AgentCount())
		if err := aiMgr.Start(gctx); err != nil {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})

	if hub != nil {
		g.Go(func() error {
			if err := debugfeed.Serve(gctx, cfg.DebugFeed.Addr(), hub); err != nil {
				return fmt.Errorf("debug feed: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	slog.Info("pursuit simulation stopped")
	return nil
}

// openRepositories connects to PostgreSQL when enabled, otherwise serves
// templates, routes and spawns from the configuration.
func openRepositories(ctx context.Context, cfg config.Simulation) (spawn.Repositories, func(), error) {
	if !cfg.Database.Enabled {
		src, err := spawn.NewConfigSource(cfg)
		if err != nil {
			return spawn.Repositories{}, nil, fmt.Errorf("loading spawns from config: %w", err)
		}
		slog.Info("using configured spawns", "spawns", len(cfg.Spawns))
		return src.Repositories(), func() {}, nil
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return spawn.Repositories{}, nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		database.Close()
		return spawn.Repositories{}, nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	return spawn.Repositories{
		Templates: database.Templates(),
		Areas:     database.Areas(),
		Routes:    database.Routes(),
		Spawns:    database.Spawns(),
	}, database.Close, nil
}

// seedTargets adds configured targets to the registry and returns movers for
// the ones that walk.
func seedTargets(cfg config.Simulation, registry *world.Registry, markers *model.MarkerPool) ([]*actor.TargetMover, error) {
	var movers []*actor.TargetMover
	for _, tc := range cfg.Targets {
		offsets := tc.Areas
		if len(offsets) == 0 {
			offsets = []config.Vec3{{}}
		}
		areas := make([]world.TracingArea, 0, len(offsets))
		for _, o := range offsets {
			areas = append(areas, world.TracingArea{Offset: o.Vec(), Layer: tc.Layer, State: model.HitEnabled})
		}

		pos := tc.Position.Vec()
		target := world.NewTarget(markers, tc.SubjectID, pos, areas)
		if err := registry.AddTarget(target); err != nil {
			return nil, fmt.Errorf("adding target %d: %w", tc.SubjectID, err)
		}

		if tc.Speed > 0 && len(tc.Waypoints) > 0 {
			waypoints := make([]model.Vec3, 0, len(tc.Waypoints))
			for _, w := range tc.Waypoints {
				waypoints = append(waypoints, w.Vec())
			}
			movers = append(movers, actor.NewTargetMover(target.Anchor(), pos, tc.Speed, waypoints))
		}
	}
	return movers, nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
