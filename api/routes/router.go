package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/shop"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
)

// Deps are the collaborators the router wires into handlers. Redis and the
// metrics registry are optional.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Shop     *shop.Service
	DB       db.Pinger
	Redis    *redis.Client
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeRejected, "Method not allowed"))
	})

	ready := map[string]controllers.Pinger{"db": d.DB}
	if d.Redis != nil {
		ready["redis"] = d.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(logg, ready))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.IPLimit,
		cfg.AuthRateLimit.UsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.IPLimit,
		0,
	)
	limit := func(p middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if d.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(p, d.Redis, logg)
	}

	basePath := cfg.Server.BasePath
	if basePath == "" {
		basePath = "/api/v1"
	}
	r.Route(basePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limit(loginPolicy)).Post("/login", controllers.AuthLogin(d.Shop, logg))
			r.With(limit(registerPolicy)).Post("/register", controllers.AuthRegister(d.Shop, logg))
		})

		r.Get("/products", controllers.ProductsList(d.Shop, logg))
		r.Get("/products/search", controllers.ProductsSearch(d.Shop, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/cart", controllers.CartGet(d.Shop, logg))
			r.Post("/cart", controllers.CartSet(d.Shop, logg))
			r.Post("/cart/checkout", controllers.CartCheckout(d.Shop, logg))

			r.Get("/user/addresses", controllers.AddressList(d.Shop, logg))
			r.Post("/user/addresses", controllers.AddressAdd(d.Shop, logg))
			r.Delete("/user/addresses/{addressId}", controllers.AddressDelete(d.Shop, logg))
		})
	})

	return r
}
