package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Peña" -> "Pena").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizePersonName normalizes a name for comparison (lowercase, no diacritics,
// spaces for dashes and underscores, collapsed whitespace).
func NormalizePersonName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// DisplayNameFromFile turns a file stem like "maria_jose-pena" into "maria jose pena"
// while keeping the original diacritics and case.
func DisplayNameFromFile(stem string) string {
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return strings.Join(strings.Fields(stem), " ")
}
