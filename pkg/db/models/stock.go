package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/variant-catalog/pkg/enums"
)

// StockEntry is the authoritative quantity of a variant at one location.
type StockEntry struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_stock_entries_key,priority:1"`
	VariantID  uint64    `gorm:"column:variant_id;not null;uniqueIndex:uq_stock_entries_key,priority:2"`
	LocationID string    `gorm:"column:location_id;type:varchar(64);not null;uniqueIndex:uq_stock_entries_key,priority:3"`
	OnHand     int64     `gorm:"column:on_hand;not null;default:0;check:chk_stock_entries_on_hand,on_hand >= 0"`
	Reserved   int64     `gorm:"column:reserved;not null;default:0;check:chk_stock_entries_reserved,reserved >= 0 AND reserved <= on_hand"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StockEntry) TableName() string { return "stock_entries" }

func (e StockEntry) Available() int64 {
	return e.OnHand - e.Reserved
}

// StockMovement is an append-only journal row written with every ledger change.
type StockMovement struct {
	ID            uint64             `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID      uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;index:idx_stock_movements_variant,priority:1"`
	VariantID     uint64             `gorm:"column:variant_id;not null;index:idx_stock_movements_variant,priority:2"`
	LocationID    string             `gorm:"column:location_id;type:varchar(64);not null"`
	Kind          enums.MovementKind `gorm:"column:kind;type:varchar(16);not null"`
	Quantity      int64              `gorm:"column:quantity;not null"`
	OnHandAfter   int64              `gorm:"column:on_hand_after;not null"`
	ReservedAfter int64              `gorm:"column:reserved_after;not null"`
	Reference     *string            `gorm:"column:reference"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (StockMovement) TableName() string { return "stock_movements" }
