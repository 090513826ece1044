package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/rocketcart/internal/catalog"
	"github.com/angelmondragon/rocketcart/pkg/config"
	"github.com/angelmondragon/rocketcart/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog"})

	_ = godotenv.Load()

	cfg, err := config.LoadFixture()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "catalog",
		Level:       logger.ParseLevel(cfg.LogLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"fixture": cfg.Path, "port": cfg.Port})

	fixture, err := catalog.LoadFixture(cfg.Path)
	if err != nil {
		logg.Error(ctx, "failed to load fixture", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: catalog.NewFixtureHandler(fixture, logg),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logg.Info(ctx, "starting fixture catalog")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "fixture catalog stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "fixture catalog shutting down gracefully")
}
