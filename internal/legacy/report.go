package legacy

import (
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/variant-catalog/pkg/errors"
)

// Warning describes a legacy stock row that was left unmigrated.
type Warning struct {
	LegacyRowID uint64         `json:"legacy_row_id"`
	ProductID   uint64         `json:"product_id"`
	Code        pkgerrors.Code `json:"code"`
	Message     string         `json:"message"`
}

// TenantReport summarises one tenant's migration. Counts are zero when the
// tenant's transaction rolled back.
type TenantReport struct {
	TenantID        uuid.UUID     `json:"tenant_id"`
	Skipped         bool          `json:"skipped"`
	VariantsCreated int           `json:"variants_created"`
	VariantsReused  int           `json:"variants_reused"`
	RowsMigrated    int           `json:"rows_migrated"`
	RowsSkipped     int           `json:"rows_skipped"`
	UnitsReceived   int64         `json:"units_received"`
	Warnings        []Warning     `json:"warnings,omitempty"`
	Duration        time.Duration `json:"duration"`
	Err             error         `json:"-"`
}

// RunReport collects the tenant reports of one run in input order.
type RunReport struct {
	Tenants []*TenantReport `json:"tenants"`
}

// Failed returns the reports whose tenant transaction rolled back.
func (r *RunReport) Failed() []*TenantReport {
	var out []*TenantReport
	for _, rep := range r.Tenants {
		if rep.Err != nil {
			out = append(out, rep)
		}
	}
	return out
}

// Totals sums the per-tenant counters.
func (r *RunReport) Totals() TenantReport {
	var total TenantReport
	for _, rep := range r.Tenants {
		total.VariantsCreated += rep.VariantsCreated
		total.VariantsReused += rep.VariantsReused
		total.RowsMigrated += rep.RowsMigrated
		total.RowsSkipped += rep.RowsSkipped
		total.UnitsReceived += rep.UnitsReceived
		total.Warnings = append(total.Warnings, rep.Warnings...)
	}
	return total
}
