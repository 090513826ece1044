package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/rocketcart/api/routes"
	"github.com/angelmondragon/rocketcart/internal/catalog"
	"github.com/angelmondragon/rocketcart/internal/notifications"
	"github.com/angelmondragon/rocketcart/internal/session"
	"github.com/angelmondragon/rocketcart/internal/snapshot"
	"github.com/angelmondragon/rocketcart/pkg/config"
	"github.com/angelmondragon/rocketcart/pkg/instance"
	"github.com/angelmondragon/rocketcart/pkg/logger"
	"github.com/angelmondragon/rocketcart/pkg/metrics"
	"github.com/angelmondragon/rocketcart/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":             cfg.App.Env,
		"instance":        instance.GetID(),
		"snapshot_driver": cfg.Cart.SnapshotDriver,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(registry)

	catalogClient, err := catalog.NewClient(cfg.Catalog, catalog.WithLogger(logg), catalog.WithMetrics(cartMetrics))
	if err != nil {
		logg.Error(ctx, "failed to create catalog client", err)
		os.Exit(1)
	}

	snapshots, err := snapshot.New(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap snapshot store", err)
		os.Exit(1)
	}

	var (
		sinks     []session.SinkFactory
		psClient  *pubsub.Client
		publisher *gcppubsub.Publisher
	)
	if cfg.PubSub.Enabled() {
		psClient, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		publisher = psClient.NotificationPublisher()
		sinks = append(sinks, func(sessionID string) notifications.Sink {
			return notifications.NewPubSubSink(publisher, sessionID, logg)
		})
	}

	sessions, err := session.NewRegistry(session.Options{
		KeyPrefix: cfg.Cart.KeyPrefix,
		Catalog:   catalogClient,
		Snapshots: snapshots,
		Logger:    logg,
		Metrics:   cartMetrics,
		Sinks:     sinks,
		IdleTTL:   cfg.Cart.SessionIdleTTL,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session registry", err)
		os.Exit(1)
	}
	defer func() {
		var closers []session.Closer
		if publisher != nil {
			publisher.Stop()
		}
		if psClient != nil {
			closers = append(closers, psClient)
		}
		closers = append(closers, snapshots)
		if err := sessions.Close(closers...); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	go sessions.Run(ctx, cfg.Cart.SessionSweepInterval)

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, sessions, snapshots, metrics.Handler(registry)),
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
