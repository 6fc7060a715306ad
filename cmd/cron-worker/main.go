package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/variant-catalog/api/controllers"
	"github.com/angelmondragon/variant-catalog/api/routes"
	"github.com/angelmondragon/variant-catalog/internal/catalog"
	"github.com/angelmondragon/variant-catalog/internal/cron"
	"github.com/angelmondragon/variant-catalog/internal/inventory"
	"github.com/angelmondragon/variant-catalog/internal/legacy"
	"github.com/angelmondragon/variant-catalog/internal/variants"
	"github.com/angelmondragon/variant-catalog/pkg/config"
	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
	"github.com/angelmondragon/variant-catalog/pkg/metrics"
	"github.com/angelmondragon/variant-catalog/pkg/migrate"
	"github.com/angelmondragon/variant-catalog/pkg/redis"
)

const (
	serviceName = "cron-worker"
	lockScope   = "cron-worker"
)

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

	var (
		redisClient *redis.Client
		redisPinger controllers.Pinger
		cronLock    cron.Lock
		tenantLocks legacy.TenantLocks
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		cronLock, err = cron.NewRedisLock(redisClient, redisClient.LockKey(lockScope, lockEnv(cfg.App.Env)), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		tenantLocks = legacy.NewRedisTenantLocks(redisClient, cfg.Legacy.LockTTL)
	} else {
		logg.Warn(context.Background(), "redis not configured; using in-process locks")
		cronLock = cron.NewLocalLock()
		tenantLocks = legacy.NewLocalTenantLocks()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	jobMetrics := metrics.NewCronJobMetrics(registry)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient, logg)
	requireResource(logg, "catalog service", err)
	variantSvc, err := variants.NewService(variants.NewRepository(dbClient.DB()), dbClient, logg, metrics.NewVariantMetrics(registry))
	requireResource(logg, "variant service", err)
	ledgerSvc, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, logg, metrics.NewStockMetrics(registry))
	requireResource(logg, "stock ledger", err)

	migrator, err := legacy.NewMigrator(legacy.Params{
		DB:          dbClient,
		Source:      legacy.NewGormSource(dbClient.DB()),
		Catalog:     catalogSvc,
		Variants:    variantSvc,
		Ledger:      ledgerSvc,
		Locks:       tenantLocks,
		Metrics:     jobMetrics,
		Logger:      logg,
		Parallelism: cfg.Legacy.Parallelism,
		SeedValues:  cfg.Legacy.SeedValues,
	})
	requireResource(logg, "legacy migrator", err)

	legacyJob, err := legacy.NewJob(migrator, logg)
	requireResource(logg, "legacy job", err)
	cacheJob, err := cron.NewVariantCacheJob(cron.VariantCacheJobParams{Logger: logg, Variants: variantSvc})
	requireResource(logg, "variant cache job", err)

	jobs, err := cron.NewRegistry(legacyJob, cacheJob)
	requireResource(logg, "job registry", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     cronLock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	requireResource(logg, "cron service", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})

	opsServer := &http.Server{
		Addr:              ":" + cfg.Cron.OpsPort,
		Handler:           routes.NewOpsRouter(cfg, logg, dbClient, redisPinger, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logg.Info(ctx, fmt.Sprintf("ops server listening on %s", opsServer.Addr))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "ops server failed", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logg.Error(context.Background(), "ops server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockEnv(env string) string {
	if env == "" {
		return "local"
	}
	return env
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
