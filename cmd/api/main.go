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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yumhub/yumhub-backend/api/routes"
	"github.com/yumhub/yumhub-backend/internal/cart"
	"github.com/yumhub/yumhub-backend/internal/orders"
	"github.com/yumhub/yumhub-backend/internal/refundwindow"
	"github.com/yumhub/yumhub-backend/internal/reviews"
	"github.com/yumhub/yumhub-backend/pkg/config"
	"github.com/yumhub/yumhub-backend/pkg/db"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/metrics"
	"github.com/yumhub/yumhub-backend/pkg/migrate"
	"github.com/yumhub/yumhub-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cartCache, err := cart.NewRedisCacheStore(redisClient, cfg.Cart.CacheTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart cache", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Logger:  logg,
		DB:      dbClient,
		Repo:    cart.NewRepository(dbClient.DB()),
		Cache:   cartCache,
		Metrics: metrics.NewCartMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	refundScheduler, err := refundwindow.NewScheduler(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create refund scheduler", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orders.ServiceParams{
		Logger:       logg,
		DB:           dbClient,
		Repo:         orders.NewRepository(dbClient.DB()),
		Carts:        cartService,
		Refunds:      refundScheduler,
		RefundWindow: cfg.Orders.RefundWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Logger: logg,
		DB:     dbClient,
		Repo:   reviews.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
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

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, cartService, ordersService, reviewsService),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server stopped")
	}
}
