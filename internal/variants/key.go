package variants

import (
	"sort"
	"strconv"
	"strings"
)

const (
	pairSeparator = "|"
	partSeparator = ":"
)

// Selection picks one value of one attribute.
type Selection struct {
	AttributeID uint64 `json:"attribute_id"`
	ValueID     uint64 `json:"value_id"`
}

// CanonicalKey serialises the selection sorted by attribute id as
// "attr:value" pairs joined by "|". An empty selection yields "".
func CanonicalKey(selection []Selection) string {
	if len(selection) == 0 {
		return ""
	}
	sorted := sortSelection(selection)
	parts := make([]string, 0, len(sorted))
	for _, sel := range sorted {
		parts = append(parts, strconv.FormatUint(sel.AttributeID, 10)+partSeparator+strconv.FormatUint(sel.ValueID, 10))
	}
	return strings.Join(parts, pairSeparator)
}

// ParseKey is the inverse of CanonicalKey.
func ParseKey(key string) ([]Selection, error) {
	if key == "" {
		return nil, nil
	}
	pairs := strings.Split(key, pairSeparator)
	out := make([]Selection, 0, len(pairs))
	for _, pair := range pairs {
		attr, value, ok := strings.Cut(pair, partSeparator)
		if !ok {
			return nil, &keyError{key: key}
		}
		attrID, err := strconv.ParseUint(attr, 10, 64)
		if err != nil {
			return nil, &keyError{key: key}
		}
		valueID, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, &keyError{key: key}
		}
		out = append(out, Selection{AttributeID: attrID, ValueID: valueID})
	}
	return out, nil
}

type keyError struct {
	key string
}

func (e *keyError) Error() string {
	return "malformed variant key " + strconv.Quote(e.key)
}

func sortSelection(selection []Selection) []Selection {
	sorted := make([]Selection, len(selection))
	copy(sorted, selection)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AttributeID < sorted[j].AttributeID
	})
	return sorted
}
