package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/variant-catalog/pkg/enums"
)

// Attribute is a tenant-defined dimension such as color or size.
type Attribute struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_attributes_tenant_code,priority:1"`
	Name      string          `gorm:"column:name;not null"`
	Code      string          `gorm:"column:code;not null;uniqueIndex:uq_attributes_tenant_code,priority:2"`
	Slug      string          `gorm:"column:slug;not null"`
	InputKind enums.InputKind `gorm:"column:input_kind;type:varchar(16);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Attribute) TableName() string { return "attributes" }
