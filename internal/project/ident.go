package project

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// IsValidUnitName reports whether name is a plain ASCII identifier:
// a letter or underscore followed by letters, digits or underscores.
func IsValidUnitName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// normalizeName trims whitespace and NFC-normalizes a manifest name so
// lookups behave the same regardless of the source encoding.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
