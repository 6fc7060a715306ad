package legacy

import (
	"context"
	"fmt"

	"github.com/angelmondragon/variant-catalog/internal/cron"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
)

// SweepJobName labels the scheduled sweep. Per-tenant runs are tracked under
// JobName.
const SweepJobName = "legacy-migration-sweep"

// NewJob wraps the migrator as a scheduled job that migrates every tenant
// with pending legacy rows.
func NewJob(m *Migrator, logg *logger.Logger) (cron.Job, error) {
	if m == nil {
		return nil, fmt.Errorf("migrator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &sweepJob{migrator: m, logg: logg}, nil
}

type sweepJob struct {
	migrator *Migrator
	logg     *logger.Logger
}

func (j *sweepJob) Name() string { return SweepJobName }

func (j *sweepJob) Run(ctx context.Context) error {
	tenants, err := j.migrator.Tenants(ctx)
	if err != nil {
		return err
	}
	if len(tenants) == 0 {
		return nil
	}
	report, err := j.migrator.Run(ctx, tenants)
	totals := report.Totals()
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"tenants":          len(tenants),
		"tenants_failed":   len(report.Failed()),
		"variants_created": totals.VariantsCreated,
		"rows_migrated":    totals.RowsMigrated,
		"rows_skipped":     totals.RowsSkipped,
	})
	j.logg.Info(logCtx, "legacy migration sweep complete")
	return err
}
