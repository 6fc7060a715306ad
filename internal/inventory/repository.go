package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/variant-catalog/pkg/db/models"
)

// Repository issues the conditional writes the ledger is built on. Every
// write touches exactly one (tenant, variant, location) row and reports
// whether its guard held through RowsAffected.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) VariantExists(ctx context.Context, tenantID uuid.UUID, variantID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("tenant_id = ? AND id = ?", tenantID, variantID).
		Count(&n).Error
	return n > 0, err
}

// AddOnHand creates the entry on first use and otherwise adds qty to on_hand.
func (r *Repository) AddOnHand(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64) error {
	entry := &models.StockEntry{
		TenantID:   tenantID,
		VariantID:  variantID,
		LocationID: locationID,
		OnHand:     qty,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "variant_id"}, {Name: "location_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"on_hand":    gorm.Expr("stock_entries.on_hand + excluded.on_hand"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(entry).Error
}

// Reserve moves qty from available to reserved when enough is available.
func (r *Repository) Reserve(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64) (bool, error) {
	return r.guardedUpdate(ctx, tenantID, variantID, locationID,
		"on_hand - reserved >= ?", qty,
		map[string]any{"reserved": gorm.Expr("reserved + ?", qty)})
}

// Commit removes qty from both on_hand and reserved.
func (r *Repository) Commit(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64) (bool, error) {
	return r.guardedUpdate(ctx, tenantID, variantID, locationID,
		"reserved >= ?", qty,
		map[string]any{
			"on_hand":  gorm.Expr("on_hand - ?", qty),
			"reserved": gorm.Expr("reserved - ?", qty),
		})
}

// Release returns qty from reserved to available.
func (r *Repository) Release(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64) (bool, error) {
	return r.guardedUpdate(ctx, tenantID, variantID, locationID,
		"reserved >= ?", qty,
		map[string]any{"reserved": gorm.Expr("reserved - ?", qty)})
}

// Adjust applies delta to on_hand unless it would leave less than reserved.
func (r *Repository) Adjust(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, delta int64) (bool, error) {
	return r.guardedUpdate(ctx, tenantID, variantID, locationID,
		"on_hand + ? - reserved >= 0", delta,
		map[string]any{"on_hand": gorm.Expr("on_hand + ?", delta)})
}

func (r *Repository) guardedUpdate(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID, guard string, arg int64, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Where("tenant_id = ? AND variant_id = ? AND location_id = ?", tenantID, variantID, locationID).
		Where(guard, arg).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindEntry returns gorm.ErrRecordNotFound when the entry was never created.
func (r *Repository) FindEntry(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variant_id = ? AND location_id = ?", tenantID, variantID, locationID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) ListEntries(ctx context.Context, tenantID uuid.UUID, variantID uint64) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variant_id = ?", tenantID, variantID).
		Order("location_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *Repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// ListMovements returns the journal newest first.
func (r *Repository) ListMovements(ctx context.Context, tenantID uuid.UUID, variantID uint64, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variant_id = ?", tenantID, variantID).
		Order("id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
