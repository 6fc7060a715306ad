package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONObject is a free-form JSON object column (jsonb in Postgres, text in SQLite).
type JSONObject map[string]any

// Value encodes the object as a JSON string so it binds under the simple
// query protocol.
func (o JSONObject) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]any(o))
	if err != nil {
		return nil, fmt.Errorf("json object: marshal: %w", err)
	}
	return string(raw), nil
}

func (o *JSONObject) Scan(value any) error {
	if value == nil {
		*o = JSONObject{}
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("json object: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*o = JSONObject{}
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("json object: unmarshal: %w", err)
	}
	*o = out
	return nil
}

// String returns the string value stored under key, or "".
func (o JSONObject) String(key string) string {
	if o == nil {
		return ""
	}
	if v, ok := o[key].(string); ok {
		return v
	}
	return ""
}

func toBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
