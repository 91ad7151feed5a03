package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yumhub/yumhub-backend/internal/cart"
	"github.com/yumhub/yumhub-backend/internal/cron"
	"github.com/yumhub/yumhub-backend/internal/orders"
	"github.com/yumhub/yumhub-backend/internal/refundwindow"
	"github.com/yumhub/yumhub-backend/pkg/config"
	"github.com/yumhub/yumhub-backend/pkg/db"
	"github.com/yumhub/yumhub-backend/pkg/instance"
	"github.com/yumhub/yumhub-backend/pkg/logger"
	"github.com/yumhub/yumhub-backend/pkg/metrics"
	"github.com/yumhub/yumhub-backend/pkg/migrate"
	"github.com/yumhub/yumhub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	reconcileJob, err := cron.NewCartReconcileJob(logg, cartService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart reconcile job", err)
		os.Exit(1)
	}
	registry, err := cron.NewRegistry(reconcileJob)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron registry", err)
		os.Exit(1)
	}
	lock, err := cron.NewRedisLock(redisClient, cron.CartReconcileJobName, cfg.Cart.ReconcileLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}
	cronService, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cart.ReconcileInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	refundWorker, err := refundwindow.NewWorker(refundwindow.WorkerParams{
		Logger:       logg,
		Queue:        redisClient,
		Orders:       ordersService,
		Metrics:      metrics.NewRefundWindowMetrics(prometheus.DefaultRegisterer),
		PollInterval: cfg.Orders.RefundPollInterval,
		BatchSize:    cfg.Orders.RefundBatchSize,
		RetryBackoff: cfg.Orders.RefundRetryBackoff,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create refund window worker", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Cron:         cronService,
		RefundWindow: refundWorker,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting worker")

	if err := service.Run(ctx); err != nil {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}
