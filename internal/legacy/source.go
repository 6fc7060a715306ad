package legacy

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	pkgerrors "github.com/angelmondragon/variant-catalog/pkg/errors"
)

const markerConstraint = "uq_legacy_stock_markers"

// Source reads the flat pre-variant tables and records which stock rows have
// been folded into the ledger.
type Source interface {
	WithTx(tx *gorm.DB) Source
	Tenants(ctx context.Context) ([]uuid.UUID, error)
	Colors(ctx context.Context, tenantID uuid.UUID) ([]models.LegacyColor, error)
	Sizes(ctx context.Context, tenantID uuid.UUID) ([]models.LegacySize, error)
	PendingStock(ctx context.Context, tenantID uuid.UUID) ([]models.LegacyStockRow, error)
	// LockTenant blocks until no other transaction is migrating the tenant.
	// The lock is released when the caller's transaction ends.
	LockTenant(ctx context.Context, tenantID uuid.UUID) error
	MarkMigrated(ctx context.Context, tenantID uuid.UUID, rowID uint64, variantID *uint64) error
}

// GormSource reads the legacy tables from the catalog database.
type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) WithTx(tx *gorm.DB) Source {
	if tx == nil {
		return s
	}
	return &GormSource{db: tx}
}

// Tenants lists tenants that own legacy stock rows.
func (s *GormSource) Tenants(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.LegacyStockRow{}).
		Distinct("tenant_id").
		Order("tenant_id ASC").
		Pluck("tenant_id", &ids).Error
	return ids, err
}

func (s *GormSource) Colors(ctx context.Context, tenantID uuid.UUID) ([]models.LegacyColor, error) {
	var colors []models.LegacyColor
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&colors).Error
	return colors, err
}

func (s *GormSource) Sizes(ctx context.Context, tenantID uuid.UUID) ([]models.LegacySize, error) {
	var sizes []models.LegacySize
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&sizes).Error
	return sizes, err
}

// PendingStock returns the tenant's unmarked stock rows grouped by
// (product, color, size).
func (s *GormSource) PendingStock(ctx context.Context, tenantID uuid.UUID) ([]models.LegacyStockRow, error) {
	var rows []models.LegacyStockRow
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("NOT EXISTS (SELECT 1 FROM legacy_stock_markers m WHERE m.tenant_id = legacy_stock.tenant_id AND m.legacy_row_id = legacy_stock.id)").
		Order("product_id ASC, color_id ASC, size_id ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// LockTenant takes a Postgres advisory lock scoped to the current
// transaction. SQLite allows a single writer, so there it is a no-op.
func (s *GormSource) LockTenant(ctx context.Context, tenantID uuid.UUID) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	return s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", AdvisoryKey(tenantID)).Error
}

// MarkMigrated records the row as folded into the ledger. A row marked by an
// overlapping run fails with CONFLICT so the caller's transaction, including
// the stock it just received, rolls back.
func (s *GormSource) MarkMigrated(ctx context.Context, tenantID uuid.UUID, rowID uint64, variantID *uint64) error {
	marker := &models.LegacyStockMarker{
		TenantID:    tenantID,
		LegacyRowID: rowID,
		VariantID:   variantID,
	}
	err := s.db.WithContext(ctx).Create(marker).Error
	if db.IsUniqueViolation(err, markerConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "legacy row already migrated").
			WithDetails(map[string]any{"legacy_row_id": rowID})
	}
	return err
}

// AdvisoryKey maps a tenant onto the int64 key space of pg_advisory locks.
func AdvisoryKey(tenantID uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(JobName))
	_, _ = h.Write(tenantID[:])
	return int64(h.Sum64())
}
