package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/variant-catalog/pkg/types"
)

// AttributeValue is one allowed value of an attribute. NormalizedValue holds
// the folded form used for uniqueness.
type AttributeValue struct {
	ID              uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID        uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_attribute_values_normalized,priority:1"`
	AttributeID     uint64           `gorm:"column:attribute_id;not null;uniqueIndex:uq_attribute_values_normalized,priority:2"`
	Value           string           `gorm:"column:value;not null"`
	NormalizedValue string           `gorm:"column:normalized_value;not null;uniqueIndex:uq_attribute_values_normalized,priority:3"`
	Code            *string          `gorm:"column:code"`
	Metadata        types.JSONObject `gorm:"column:metadata;type:jsonb;not null"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (AttributeValue) TableName() string { return "attribute_values" }
