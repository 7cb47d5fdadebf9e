// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  鹽埕區 ", "鼓山區", "鹽埕區", "", "  "})
//	// Returns: []string{"鹽埕區", "鼓山區"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// SplitAny splits s on every rune contained in separators. Empty fields are
// dropped; fields are returned untrimmed.
//
// Example:
//
//	SplitAny("鹽埕區、鼓山區(備註)", "、()")
//	// Returns: []string{"鹽埕區", "鼓山區", "備註"}
func SplitAny(s, separators string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
}
