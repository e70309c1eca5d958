package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gmihail/shop/api/controllers"
	cartcontrollers "github.com/gmihail/shop/api/controllers/cart"
	"github.com/gmihail/shop/api/middleware"
	"github.com/gmihail/shop/internal/auth"
	"github.com/gmihail/shop/internal/cart"
	"github.com/gmihail/shop/internal/catalog"
	"github.com/gmihail/shop/pkg/auth/session"
	"github.com/gmihail/shop/pkg/config"
	"github.com/gmihail/shop/pkg/db"
	"github.com/gmihail/shop/pkg/logger"
	"github.com/gmihail/shop/pkg/metrics"
	"github.com/gmihail/shop/pkg/redis"
)

const cartItemsPattern = "/api/v1/cart/items"

// redisStore is the part of the redis client the HTTP layer talks to.
type redisStore interface {
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	sessions session.AccessSessionChecker,
	cookies session.Store,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	cartPresenter *cart.Presenter,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	idempotencyRules := []middleware.IdempotencyRule{
		{Method: http.MethodPost, Pattern: cartItemsPattern, TTL: cfg.Cart.IdempotencyTTL},
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identify(cfg.JWT, sessions, cookies, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, cookies, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, cookies, logg))
			r.Post("/logout", controllers.AuthLogout(authService, cookies, cfg.JWT, logg))
		})

		r.Get("/products", controllers.ProductList(catalogService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(catalogService, logg))
		r.Get("/cart/count", cartcontrollers.CartCount(cartService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))

			r.Get("/profile", controllers.ProfileGet(authService, logg))
			r.Put("/profile", controllers.ProfileUpdate(authService, logg))

			r.Get("/cart", cartcontrollers.CartFetch(cartService, cartPresenter, logg))
			r.With(middleware.Idempotency(redisClient, idempotencyRules, logg)).Post("/cart/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Put("/cart/items/{itemId}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/cart/items/{itemId}", cartcontrollers.CartRemoveItem(cartService, logg))
		})
	})

	return r
}
