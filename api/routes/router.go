package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anvitsharma/trendora-backend/api/controllers"
	"github.com/anvitsharma/trendora-backend/api/middleware"
	"github.com/anvitsharma/trendora-backend/api/responses"
	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/internal/lifecycle"
	"github.com/anvitsharma/trendora-backend/internal/orders"
	"github.com/anvitsharma/trendora-backend/internal/orderstatus"
	"github.com/anvitsharma/trendora-backend/pkg/config"
	"github.com/anvitsharma/trendora-backend/pkg/db"
	pkgerrors "github.com/anvitsharma/trendora-backend/pkg/errors"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
	"github.com/anvitsharma/trendora-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	Lifecycle       *lifecycle.Service
	Resolver        *authz.Resolver
	Recomputer      *orderstatus.Recomputer
	Orders          orders.Repository
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, "method not allowed"))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB))
	})

	if params.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	var idemStore redis.IdempotencyStore
	if params.Redis != nil {
		idemStore = params.Redis
	}

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Post("/items/action", controllers.ItemAction(params.Lifecycle, logg))
		r.Get("/", controllers.ListOrders(params.Orders, logg))
		r.Get("/{orderId}", controllers.GetOrder(params.Orders, params.Resolver, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/{orderId}/status/recompute", controllers.RecomputeOrderStatus(params.Resolver, params.Orders, params.Recomputer, logg))
		})
	})

	return r
}
