package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the sellable template (SPU). It is never sold directly.
type Product struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID    uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index:idx_products_tenant"`
	Description string          `gorm:"column:description;not null"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(14,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
