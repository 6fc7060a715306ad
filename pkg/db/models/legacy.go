package models

import (
	"time"

	"github.com/google/uuid"
)

// LegacyColor is a row of the pre-variant color table.
type LegacyColor struct {
	ID       uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name     string    `gorm:"column:name;not null"`
	Hex      *string   `gorm:"column:hex"`
}

func (LegacyColor) TableName() string { return "legacy_colors" }

// LegacySize is a row of the pre-variant size table.
type LegacySize struct {
	ID       uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name     string    `gorm:"column:name;not null"`
}

func (LegacySize) TableName() string { return "legacy_sizes" }

// LegacyStockRow is a flat (product, color, size, location, stock) record.
type LegacyStockRow struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID  uint64    `gorm:"column:product_id;not null"`
	ColorID    *uint64   `gorm:"column:color_id"`
	SizeID     *uint64   `gorm:"column:size_id"`
	LocationID string    `gorm:"column:location_id;type:varchar(64);not null"`
	Stock      int64     `gorm:"column:stock;not null;default:0"`
}

func (LegacyStockRow) TableName() string { return "legacy_stock" }

// LegacyStockMarker records that a legacy stock row was folded into the ledger.
type LegacyStockMarker struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_legacy_stock_markers,priority:1"`
	LegacyRowID uint64    `gorm:"column:legacy_row_id;not null;uniqueIndex:uq_legacy_stock_markers,priority:2"`
	VariantID   *uint64   `gorm:"column:variant_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (LegacyStockMarker) TableName() string { return "legacy_stock_markers" }
