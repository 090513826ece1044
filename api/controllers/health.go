package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/rocketcart/api/responses"
	"github.com/angelmondragon/rocketcart/pkg/config"
	pkgerrors "github.com/angelmondragon/rocketcart/pkg/errors"
	"github.com/angelmondragon/rocketcart/pkg/logger"
)

const envHeader = "X-Rocketcart-Env"

// Pinger exposes the health check surface of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the snapshot store answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, snapshots Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if snapshots != nil {
			if err := snapshots.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot store unavailable").
					WithDetails(map[string]any{"dependency": cfg.Cart.SnapshotDriver}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
