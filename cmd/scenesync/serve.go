package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/SurakshaKumari/gt-3D-backend/internal/api"
	"github.com/SurakshaKumari/gt-3D-backend/internal/assets"
	"github.com/SurakshaKumari/gt-3D-backend/internal/bus"
	"github.com/SurakshaKumari/gt-3D-backend/internal/config"
	"github.com/SurakshaKumari/gt-3D-backend/internal/database"
	"github.com/SurakshaKumari/gt-3D-backend/internal/metrics"
	"github.com/SurakshaKumari/gt-3D-backend/internal/poller"
	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
	"github.com/SurakshaKumari/gt-3D-backend/internal/relay"
	"github.com/SurakshaKumari/gt-3D-backend/internal/room"
	"github.com/SurakshaKumari/gt-3D-backend/internal/session"
	"github.com/SurakshaKumari/gt-3D-backend/internal/store"
	"github.com/SurakshaKumari/gt-3D-backend/internal/version"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting scenesync",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"config", configPath,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reg *prometheus.Registry
		m   *metrics.Metrics
	)
	if !cfg.Metrics.Disabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
	}

	projects, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer projects.Close()

	files, err := assets.New(cfg.Assets)
	if err != nil {
		return fmt.Errorf("open assets: %w", err)
	}
	logger.Info("assets ready", "driver", cfg.Assets.Driver)

	b, err := bus.New(cfg.Bus, logger)
	if err != nil {
		return fmt.Errorf("open bus: %w", err)
	}
	if b != nil {
		defer b.Close()
	}

	registry := room.NewRegistry(logger)

	health := poller.New(poller.DefaultConfig(), projects, registry, logger, m)
	if err := health.Start(ctx); err != nil {
		return fmt.Errorf("start health poller: %w", err)
	}

	fanout := relay.NewFanout(registry, b, cfg.Instance.ID, logger, m)
	presence := relay.NewPresence(fanout, logger)
	reconciler := reconcile.New(projects, reconcile.Config{StoreTimeout: cfg.Database.StoreTimeout}, logger, m)

	gateway := session.NewGateway(session.Config{
		PingInterval:    cfg.Session.PingInterval,
		PongTimeout:     cfg.Session.PongTimeout,
		WriteTimeout:    cfg.Session.WriteTimeout,
		OutboxSize:      cfg.Session.OutboxSize,
		WriteBatch:      cfg.Session.WriteBatch,
		MaxMessageBytes: cfg.Session.MaxMessageBytes,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
	}, registry, reconciler, fanout, presence, logger, m)

	handler := api.NewHandler(api.Config{
		InstanceID:     cfg.Instance.ID,
		MaxUploadBytes: cfg.Assets.MaxUploadBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, projects, files, reconciler, fanout, registry, logger, m)

	router := handler.Router()
	router.Handle("/ws", gateway)
	if reg != nil {
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := fanout.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bus subscriber: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := gateway.Shutdown(shutdownCtx); err != nil {
			logger.Warn("websocket shutdown incomplete", "error", err)
		}
		if err := health.Stop(shutdownCtx); err != nil {
			logger.Warn("health poller shutdown incomplete", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("scenesync stopped", "stats", gateway.Stats())
	return err
}

// openStore opens the configured project store, running migrations first
// when asked to.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory project store; data is lost on restart")
		return store.NewMemory(), nil
	}

	connStr := database.BuildConnString(cfg)

	if cfg.MigrateOnStart {
		migrator, err := database.NewMigrator(connStr, logger)
		if err != nil {
			return nil, err
		}
		err = migrator.Up()
		migrator.Close()
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	logger.Info("connecting to database", "host", cfg.Host, "database", cfg.Name)
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("database connected")

	return store.NewPostgres(pool), nil
}
