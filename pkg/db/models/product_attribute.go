package models

import (
	"github.com/google/uuid"
)

// ProductAttribute links an attribute to a product.
type ProductAttribute struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID      uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_product_attributes,priority:1"`
	ProductID     uint64    `gorm:"column:product_id;not null;uniqueIndex:uq_product_attributes,priority:2"`
	AttributeID   uint64    `gorm:"column:attribute_id;not null;uniqueIndex:uq_product_attributes,priority:3"`
	UsedInVariant bool      `gorm:"column:used_in_variant;not null;default:false"`
	DisplayOrder  int       `gorm:"column:display_order;not null;default:0"`
}

func (ProductAttribute) TableName() string { return "product_attributes" }

// ProductAttributeValue restricts which values of an attribute a product offers.
type ProductAttributeValue struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_product_attribute_values,priority:1"`
	ProductID   uint64    `gorm:"column:product_id;not null;uniqueIndex:uq_product_attribute_values,priority:2"`
	AttributeID uint64    `gorm:"column:attribute_id;not null;uniqueIndex:uq_product_attribute_values,priority:3"`
	ValueID     uint64    `gorm:"column:value_id;not null;uniqueIndex:uq_product_attribute_values,priority:4"`
}

func (ProductAttributeValue) TableName() string { return "product_attribute_values" }
