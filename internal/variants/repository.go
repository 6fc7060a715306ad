package variants

import (
	"context"

	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	"github.com/angelmondragon/variant-catalog/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads the catalog configuration a resolution depends on and
// persists variants.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindProduct(ctx context.Context, tenantID uuid.UUID, productID uint64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// VariantLinks returns the product's attribute links flagged usedInVariant.
func (r *Repository) VariantLinks(ctx context.Context, tenantID uuid.UUID, productID uint64) ([]models.ProductAttribute, error) {
	var links []models.ProductAttribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND used_in_variant = ?", tenantID, productID, true).
		Order("display_order ASC, attribute_id ASC").
		Find(&links).Error
	return links, err
}

func (r *Repository) AttributesByIDs(ctx context.Context, tenantID uuid.UUID, ids []uint64) ([]models.Attribute, error) {
	var attrs []models.Attribute
	if len(ids) == 0 {
		return attrs, nil
	}
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&attrs).Error
	return attrs, err
}

func (r *Repository) ValuesByIDs(ctx context.Context, tenantID uuid.UUID, ids []uint64) ([]models.AttributeValue, error) {
	var values []models.AttributeValue
	if len(ids) == 0 {
		return values, nil
	}
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&values).Error
	return values, err
}

// AllowedValues returns the allowed rows of the product restricted to attributeIDs.
func (r *Repository) AllowedValues(ctx context.Context, tenantID uuid.UUID, productID uint64, attributeIDs []uint64) ([]models.ProductAttributeValue, error) {
	var rows []models.ProductAttributeValue
	if len(attributeIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND attribute_id IN ?", tenantID, productID, attributeIDs).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByKey(ctx context.Context, tenantID uuid.UUID, productID uint64, key string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND attrs_key = ?", tenantID, productID, key).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *Repository) FindByID(ctx context.Context, tenantID uuid.UUID, variantID uint64) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, variantID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *Repository) ListByProduct(ctx context.Context, tenantID uuid.UUID, productID uint64) ([]models.Variant, error) {
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("id ASC").
		Find(&variants).Error
	return variants, err
}

func (r *Repository) CreateVariant(ctx context.Context, variant *models.Variant, pairs []models.VariantAttributeValue) error {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}
	for i := range pairs {
		pairs[i].VariantID = variant.ID
	}
	return r.db.WithContext(ctx).Create(&pairs).Error
}

type snapshotRow struct {
	VariantID     uint64
	AttributeID   uint64
	AttributeCode string
	AttributeName string
	ValueID       uint64
	Value         string
}

// SnapshotRows joins variant pairs to attribute and value text. A nil
// variantID selects every variant of the tenant.
func (r *Repository) SnapshotRows(ctx context.Context, tenantID uuid.UUID, variantID *uint64) ([]snapshotRow, error) {
	query := r.db.WithContext(ctx).
		Table("variant_attribute_values AS vav").
		Select("vav.variant_id, vav.attribute_id, a.code AS attribute_code, a.name AS attribute_name, vav.value_id, av.value").
		Joins("JOIN attributes a ON a.id = vav.attribute_id").
		Joins("JOIN attribute_values av ON av.id = vav.value_id").
		Where("vav.tenant_id = ?", tenantID)
	if variantID != nil {
		query = query.Where("vav.variant_id = ?", *variantID)
	}
	var rows []snapshotRow
	err := query.Order("vav.variant_id ASC, vav.attribute_id ASC").Scan(&rows).Error
	return rows, err
}

func (r *Repository) VariantIDs(ctx context.Context, tenantID uuid.UUID) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) UpdateSnapshot(ctx context.Context, tenantID uuid.UUID, variantID uint64, snapshot types.AttributeSnapshot) error {
	return r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("tenant_id = ? AND id = ?", tenantID, variantID).
		Update("attributes", snapshot).Error
}

const refreshStockCacheSQL = `
UPDATE variants
SET stock_cache = COALESCE((
    SELECT SUM(se.on_hand)
    FROM stock_entries se
    WHERE se.tenant_id = variants.tenant_id AND se.variant_id = variants.id
), 0)
WHERE tenant_id = ?`

// RefreshStockCache recomputes stock_cache from stock_entries for the tenant.
func (r *Repository) RefreshStockCache(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Exec(refreshStockCacheSQL, tenantID)
	return res.RowsAffected, res.Error
}

// TenantIDs lists tenants that own at least one variant.
func (r *Repository) TenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Distinct("tenant_id").
		Order("tenant_id ASC").
		Pluck("tenant_id", &ids).Error
	return ids, err
}
