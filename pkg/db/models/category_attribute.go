package models

import (
	"github.com/google/uuid"
)

// CategoryAttribute is one entry of a category's attribute template. Products
// in the category are linked to these attributes when the template is applied.
type CategoryAttribute struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID     uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_category_attributes,priority:1"`
	CategoryID   uint64    `gorm:"column:category_id;not null;uniqueIndex:uq_category_attributes,priority:2"`
	AttributeID  uint64    `gorm:"column:attribute_id;not null;uniqueIndex:uq_category_attributes,priority:3"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	Required     bool      `gorm:"column:required;not null;default:false"`
}

func (CategoryAttribute) TableName() string { return "category_attributes" }
