package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/gmihail/shop/api"
	"github.com/gmihail/shop/api/routes"
	"github.com/gmihail/shop/internal/auth"
	"github.com/gmihail/shop/internal/cart"
	"github.com/gmihail/shop/internal/catalog"
	"github.com/gmihail/shop/pkg/auth/session"
	"github.com/gmihail/shop/pkg/config"
	"github.com/gmihail/shop/pkg/db"
	"github.com/gmihail/shop/pkg/logger"
	"github.com/gmihail/shop/pkg/metrics"
	"github.com/gmihail/shop/pkg/migrate"
	"github.com/gmihail/shop/pkg/redis"
	"github.com/gmihail/shop/pkg/security"
)

const serviceName = "shop-api"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}
	hasher, err := security.NewHasher(cfg.Password)
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		Hasher:         hasher,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:        cart.NewRepository(dbClient.DB()),
		Catalog:     catalogService,
		Tx:          dbClient,
		Metrics:     metrics.NewCartMetrics(reg),
		Logger:      logg.Named("cart"),
		MaxQuantity: cfg.Cart.MaxQuantity,
	})
	if err != nil {
		return fmt.Errorf("cart service: %w", err)
	}
	presenter, err := cart.NewPresenter(catalogService, logg.Named("cart_presenter"))
	if err != nil {
		return fmt.Errorf("cart presenter: %w", err)
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sessionManager,
		session.NewCookieStore(cfg.Session),
		metrics.NewHTTPMetrics(reg),
		reg,
		authService,
		catalogService,
		cartService,
		presenter,
	)

	addr := ":" + cfg.App.Port
	logg.Info(logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr}), "starting api server")

	return api.Serve(ctx, api.NewServer(addr, handler), logg)
}
