package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angelmondragon/variant-catalog/internal/catalog"
	"github.com/angelmondragon/variant-catalog/internal/inventory"
	"github.com/angelmondragon/variant-catalog/internal/legacy"
	"github.com/angelmondragon/variant-catalog/internal/variants"
	"github.com/angelmondragon/variant-catalog/pkg/config"
	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/env"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
	"github.com/angelmondragon/variant-catalog/pkg/migrate"
	"github.com/angelmondragon/variant-catalog/pkg/redis"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	// Flags
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|legacy")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")

	// Command-specific flags
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	tenants := flag.String("tenants", env.Get("LEGACY_TENANTS", "all"), "comma separated tenant ids or \"all\" for -cmd=legacy")

	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	// Commands that do NOT require DB
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "missing -name for create")
			os.Exit(1)
		}
		logg.Info(ctx, "migrate ready")
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		logg.Info(ctx, "migrate ready")
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	// Everything else needs DB
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up":
		if err := migrate.Run(ctx, sqlDB, *dir, "up"); err != nil {
			fmt.Fprintf(os.Stderr, "goose up failed: %v\n", err)
			os.Exit(1)
		}

	case "down":
		if err := migrate.Run(ctx, sqlDB, *dir, "down"); err != nil {
			fmt.Fprintf(os.Stderr, "goose down failed: %v\n", err)
			os.Exit(1)
		}

	case "status":
		if err := migrate.Run(ctx, sqlDB, *dir, "status"); err != nil {
			fmt.Fprintf(os.Stderr, "goose status failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing -version for version command")
			os.Exit(1)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			fmt.Fprintf(os.Stderr, "goose version migrate failed: %v\n", err)
			os.Exit(1)
		}

	case "legacy":
		if err := runLegacy(ctx, cfg, logg, dbClient, *tenants); err != nil {
			fmt.Fprintf(os.Stderr, "legacy migration failed: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

// runLegacy migrates legacy color/size stock rows into variants and the stock
// ledger. The JSON report is printed even when some tenants fail.
func runLegacy(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, tenantFlag string) error {
	var locks legacy.TenantLocks = legacy.NewLocalTenantLocks()
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		locks = legacy.NewRedisTenantLocks(redisClient, cfg.Legacy.LockTTL)
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		return err
	}
	variantSvc, err := variants.NewService(variants.NewRepository(dbClient.DB()), dbClient, logg, nil)
	if err != nil {
		return err
	}
	ledgerSvc, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, logg, nil)
	if err != nil {
		return err
	}
	migrator, err := legacy.NewMigrator(legacy.Params{
		DB:          dbClient,
		Source:      legacy.NewGormSource(dbClient.DB()),
		Catalog:     catalogSvc,
		Variants:    variantSvc,
		Ledger:      ledgerSvc,
		Locks:       locks,
		Logger:      logg,
		Parallelism: cfg.Legacy.Parallelism,
		SeedValues:  cfg.Legacy.SeedValues,
	})
	if err != nil {
		return err
	}

	ids, err := parseTenants(tenantFlag)
	if err != nil {
		return err
	}
	if ids == nil {
		if ids, err = migrator.Tenants(ctx); err != nil {
			return err
		}
	}

	report, runErr := migrator.Run(ctx, ids)
	out, err := json.MarshalIndent(map[string]any{
		"tenants": report.Tenants,
		"totals":  report.Totals(),
		"failed":  len(report.Failed()),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return runErr
}

// parseTenants returns nil for "all".
func parseTenants(value string) ([]uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "all") {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid tenant id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
