package catalog

import (
	"context"

	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists attributes, values, products and their links.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateAttribute(ctx context.Context, attr *models.Attribute) error {
	return r.db.WithContext(ctx).Create(attr).Error
}

func (r *Repository) SaveAttribute(ctx context.Context, attr *models.Attribute) error {
	return r.db.WithContext(ctx).Save(attr).Error
}

func (r *Repository) FindAttribute(ctx context.Context, tenantID uuid.UUID, id uint64) (*models.Attribute, error) {
	var attr models.Attribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&attr).Error
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *Repository) FindAttributeByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Attribute, error) {
	var attr models.Attribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&attr).Error
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *Repository) ListAttributes(ctx context.Context, tenantID uuid.UUID) ([]models.Attribute, error) {
	var attrs []models.Attribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC, id ASC").
		Find(&attrs).Error
	return attrs, err
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

func (r *Repository) CreateValue(ctx context.Context, value *models.AttributeValue) error {
	return r.db.WithContext(ctx).Create(value).Error
}

// LockValue reads the value and, on Postgres, holds a row lock until the
// transaction ends so no variant can start referencing it.
func (r *Repository) LockValue(ctx context.Context, tenantID uuid.UUID, id uint64) (*models.AttributeValue, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var value models.AttributeValue
	if err := query.Where("tenant_id = ? AND id = ?", tenantID, id).First(&value).Error; err != nil {
		return nil, err
	}
	return &value, nil
}

func (r *Repository) FindValueByNormalized(ctx context.Context, tenantID uuid.UUID, attributeID uint64, normalized string) (*models.AttributeValue, error) {
	var value models.AttributeValue
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND attribute_id = ? AND normalized_value = ?", tenantID, attributeID, normalized).
		First(&value).Error
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (r *Repository) ListValues(ctx context.Context, tenantID uuid.UUID, attributeID uint64) ([]models.AttributeValue, error) {
	var values []models.AttributeValue
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND attribute_id = ?", tenantID, attributeID).
		Order("value ASC, id ASC").
		Find(&values).Error
	return values, err
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

func (r *Repository) DeleteValue(ctx context.Context, tenantID uuid.UUID, id uint64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.AttributeValue{}).Error
}

// CountValueUsage returns how many variants are built from the value.
func (r *Repository) CountValueUsage(ctx context.Context, tenantID uuid.UUID, valueID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VariantAttributeValue{}).
		Where("tenant_id = ? AND value_id = ?", tenantID, valueID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repository) FindProduct(ctx context.Context, tenantID uuid.UUID, id uint64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertProductAttribute inserts the link or updates its flag and order.
func (r *Repository) UpsertProductAttribute(ctx context.Context, link *models.ProductAttribute) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "attribute_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"used_in_variant", "display_order"}),
		}).
		Create(link).Error
}

func (r *Repository) FindProductAttribute(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64) (*models.ProductAttribute, error) {
	var link models.ProductAttribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND attribute_id = ?", tenantID, productID, attributeID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ListProductAttributes returns the product's links in display order.
func (r *Repository) ListProductAttributes(ctx context.Context, tenantID uuid.UUID, productID uint64) ([]models.ProductAttribute, error) {
	var links []models.ProductAttribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("display_order ASC, attribute_id ASC").
		Find(&links).Error
	return links, err
}

// ReplaceAllowedValues swaps the allowed set for (product, attribute). Callers
// run it inside a transaction.
func (r *Repository) ReplaceAllowedValues(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, valueIDs []uint64) error {
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND attribute_id = ?", tenantID, productID, attributeID).
		Delete(&models.ProductAttributeValue{}).Error; err != nil {
		return err
	}
	return r.AddAllowedValues(ctx, tenantID, productID, attributeID, valueIDs)
}

// AddAllowedValues inserts allowed values, ignoring ones already present.
func (r *Repository) AddAllowedValues(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, valueIDs []uint64) error {
	if len(valueIDs) == 0 {
		return nil
	}
	rows := make([]models.ProductAttributeValue, 0, len(valueIDs))
	for _, id := range valueIDs {
		rows = append(rows, models.ProductAttributeValue{
			TenantID:    tenantID,
			ProductID:   productID,
			AttributeID: attributeID,
			ValueID:     id,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *Repository) ListAllowedValueIDs(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.ProductAttributeValue{}).
		Where("tenant_id = ? AND product_id = ? AND attribute_id = ?", tenantID, productID, attributeID).
		Order("value_id ASC").
		Pluck("value_id", &ids).Error
	return ids, err
}

// ReplaceCategoryAttributes swaps the category's template. Callers run it
// inside a transaction.
func (r *Repository) ReplaceCategoryAttributes(ctx context.Context, tenantID uuid.UUID, categoryID uint64, rows []models.CategoryAttribute) error {
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Delete(&models.CategoryAttribute{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListCategoryAttributes returns the template in display order.
func (r *Repository) ListCategoryAttributes(ctx context.Context, tenantID uuid.UUID, categoryID uint64) ([]models.CategoryAttribute, error) {
	var rows []models.CategoryAttribute
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Order("display_order ASC, attribute_id ASC").
		Find(&rows).Error
	return rows, err
}

// InsertMissingProductAttributes creates links, leaving existing ones as they are.
func (r *Repository) InsertMissingProductAttributes(ctx context.Context, links []models.ProductAttribute) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}
