package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/variant-catalog/pkg/logger"
)

const VariantCacheJobName = "variant-cache-reconcile"

// variantCaches is the subset of the variant resolver the job needs.
type variantCaches interface {
	Tenants(ctx context.Context) ([]uuid.UUID, error)
	RefreshStockCache(ctx context.Context, tenantID uuid.UUID) (int64, error)
	RebuildSnapshots(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type VariantCacheJobParams struct {
	Logger   *logger.Logger
	Variants variantCaches
}

// NewVariantCacheJob builds the job that recomputes each variant's cached
// stock total and attribute snapshot from the ledger and catalog.
func NewVariantCacheJob(params VariantCacheJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Variants == nil {
		return nil, fmt.Errorf("variant service required")
	}
	return &variantCacheJob{logg: params.Logger, variants: params.Variants}, nil
}

type variantCacheJob struct {
	logg     *logger.Logger
	variants variantCaches
}

func (j *variantCacheJob) Name() string { return VariantCacheJobName }

// Run reconciles every tenant. A failing tenant does not stop the rest.
func (j *variantCacheJob) Run(ctx context.Context) error {
	tenants, err := j.variants.Tenants(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	var errs error
	for _, tenantID := range tenants {
		tenantCtx := j.logg.WithTenantID(ctx, tenantID.String())
		refreshed, err := j.variants.RefreshStockCache(tenantCtx, tenantID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tenant %s stock cache: %w", tenantID, err))
			continue
		}
		rebuilt, err := j.variants.RebuildSnapshots(tenantCtx, tenantID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tenant %s snapshots: %w", tenantID, err))
			continue
		}
		tenantCtx = j.logg.WithFields(tenantCtx, map[string]any{
			"stock_rows_updated": refreshed,
			"snapshots_rebuilt":  rebuilt,
		})
		j.logg.Info(tenantCtx, "variant caches reconciled")
	}
	return errs
}
