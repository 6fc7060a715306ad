// Package textnorm folds free text into the comparison form used for
// attribute value uniqueness and legacy name matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, case-folds and collapses whitespace.
// "  Azúl  Marino " and "azul marino" normalise to the same string.
func Normalize(value string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, value)
	if err != nil {
		folded = value
	}
	folded = cases.Fold().String(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Slug turns a display name into a lower-case code made of [a-z0-9_].
func Slug(value string) string {
	normalized := Normalize(value)
	var b strings.Builder
	b.Grow(len(normalized))
	lastUnderscore := true
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Equal reports whether two strings normalise to the same form.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
