package enums

import (
	"fmt"
	"strings"
)

// InputKind controls how an attribute is presented when values are picked.
type InputKind string

const (
	InputKindSelect  InputKind = "select"
	InputKindText    InputKind = "text"
	InputKindNumber  InputKind = "number"
	InputKindBoolean InputKind = "boolean"
	InputKindColor   InputKind = "color"
	InputKindButton  InputKind = "button"
)

var validInputKinds = []InputKind{
	InputKindSelect,
	InputKindText,
	InputKindNumber,
	InputKindBoolean,
	InputKindColor,
	InputKindButton,
}

// IsValid reports whether the value is a known input kind.
func (k InputKind) IsValid() bool {
	for _, candidate := range validInputKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseInputKind converts raw input into InputKind. Empty input defaults to select.
func ParseInputKind(value string) (InputKind, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return InputKindSelect, nil
	}
	for _, candidate := range validInputKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid input kind %q", value)
}
