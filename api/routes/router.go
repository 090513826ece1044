package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/rocketcart/api/controllers"
	"github.com/angelmondragon/rocketcart/api/middleware"
	"github.com/angelmondragon/rocketcart/pkg/config"
	"github.com/angelmondragon/rocketcart/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions controllers.SessionProvider,
	snapshots controllers.Pinger,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, snapshots))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Session(logg))
		r.Get("/", controllers.CartFetch(sessions, logg))
		r.Delete("/", controllers.CartClear(sessions, logg))
		r.Post("/items", controllers.CartAddItem(sessions, logg))
		r.Delete("/items/{productId}", controllers.CartRemoveItem(sessions, logg))
		r.Put("/items/{productId}", controllers.CartUpdateItem(sessions, logg))
	})

	return r
}
