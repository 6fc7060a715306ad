package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/variant-catalog/pkg/types"
)

// Variant is one concrete, purchasable combination of attribute values.
// AttrsKey is the canonical key of its pairs; StockCache and Attributes are
// derived caches.
type Variant struct {
	ID            uint64                  `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID      uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_variants_tenant_product_key,priority:1"`
	ProductID     uint64                  `gorm:"column:product_id;not null;uniqueIndex:uq_variants_tenant_product_key,priority:2"`
	AttrsKey      string                  `gorm:"column:attrs_key;not null;uniqueIndex:uq_variants_tenant_product_key,priority:3"`
	SKU           string                  `gorm:"column:sku;type:varchar(64);not null"`
	Barcode       *string                 `gorm:"column:barcode"`
	Price         decimal.Decimal         `gorm:"column:price;type:numeric(14,2);not null"`
	PriceOverride decimal.NullDecimal     `gorm:"column:price_override;type:numeric(14,2)"`
	StockCache    int64                   `gorm:"column:stock_cache;not null;default:0"`
	Attributes    types.AttributeSnapshot `gorm:"column:attributes;type:jsonb;not null"`
	IsActive      bool                    `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Variant) TableName() string { return "variants" }

// EffectivePrice returns the override when set, otherwise the copied base price.
func (v Variant) EffectivePrice() decimal.Decimal {
	if v.PriceOverride.Valid {
		return v.PriceOverride.Decimal
	}
	return v.Price
}

// VariantAttributeValue is the source of truth for a variant's pairs.
type VariantAttributeValue struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null"`
	VariantID   uint64    `gorm:"column:variant_id;not null;uniqueIndex:uq_variant_attribute_values,priority:1"`
	AttributeID uint64    `gorm:"column:attribute_id;not null;uniqueIndex:uq_variant_attribute_values,priority:2"`
	ValueID     uint64    `gorm:"column:value_id;not null;index:idx_variant_attribute_values_value"`
}

func (VariantAttributeValue) TableName() string { return "variant_attribute_values" }
