package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AttributeSnapshotEntry is one attribute/value pair of a variant.
type AttributeSnapshotEntry struct {
	AttributeID   uint64 `json:"attribute_id"`
	AttributeCode string `json:"attribute_code"`
	AttributeName string `json:"attribute_name"`
	ValueID       uint64 `json:"value_id"`
	Value         string `json:"value"`
}

// AttributeSnapshot is the denormalised copy of a variant's attribute values,
// ordered by attribute id. It is rebuilt from variant_attribute_values and
// never treated as the source of truth.
type AttributeSnapshot []AttributeSnapshotEntry

// ByName returns the snapshot as attribute name to value text.
func (s AttributeSnapshot) ByName() map[string]string {
	out := make(map[string]string, len(s))
	for _, entry := range s {
		out[entry.AttributeName] = entry.Value
	}
	return out
}

func (s AttributeSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]AttributeSnapshotEntry(s))
	if err != nil {
		return nil, fmt.Errorf("attribute snapshot: marshal: %w", err)
	}
	return string(raw), nil
}

func (s *AttributeSnapshot) Scan(value any) error {
	if value == nil {
		*s = AttributeSnapshot{}
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("attribute snapshot: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*s = AttributeSnapshot{}
		return nil
	}
	var out []AttributeSnapshotEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("attribute snapshot: unmarshal: %w", err)
	}
	*s = out
	return nil
}
