package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anvitsharma/trendora-backend/api/routes"
	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/internal/lifecycle"
	"github.com/anvitsharma/trendora-backend/internal/orders"
	"github.com/anvitsharma/trendora-backend/internal/orderstatus"
	"github.com/anvitsharma/trendora-backend/internal/refunds"
	"github.com/anvitsharma/trendora-backend/pkg/config"
	"github.com/anvitsharma/trendora-backend/pkg/db"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
	"github.com/anvitsharma/trendora-backend/pkg/metrics"
	"github.com/anvitsharma/trendora-backend/pkg/migrate"
	"github.com/anvitsharma/trendora-backend/pkg/outbox"
	"github.com/anvitsharma/trendora-backend/pkg/redis"
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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	lifecycleMetrics := metrics.NewLifecycleMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	refundsRepo := refunds.NewRepository(dbClient.DB())
	profilesRepo := authz.NewProfileRepository(dbClient.DB())
	resolver := authz.NewResolver(profilesRepo, logg)
	recomputer := orderstatus.NewRecomputer(ordersRepo, logg, lifecycleMetrics)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	lifecycleService, err := lifecycle.NewService(lifecycle.ServiceParams{
		Orders:       ordersRepo,
		Refunds:      refundsRepo,
		Tx:           dbClient,
		Authorizer:   resolver,
		Recomputer:   recomputer,
		Events:       outboxService,
		Logger:       logg,
		Metrics:      lifecycleMetrics,
		ReturnWindow: cfg.Returns.Window,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Lifecycle:       lifecycleService,
			Resolver:        resolver,
			Recomputer:      recomputer,
			Orders:          ordersRepo,
			MetricsGatherer: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
