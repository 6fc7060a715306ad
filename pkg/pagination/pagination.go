package pagination

const (
	// DefaultLimit is the page size used when a caller passes zero or less.
	DefaultLimit = 50
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 500
)

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
