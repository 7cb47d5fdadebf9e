package domain

import (
	"strings"

	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// ServiceCategory is an independent draw pool. An organization excluded under
// one category stays eligible under every other category.
//
// Usage: construct via ParseServiceCategory at trust boundaries; direct casting
// bypasses validation.
type ServiceCategory string

// Supported categories.
const (
	CategoryTransport        ServiceCategory = "transport"
	CategoryHomeRespite      ServiceCategory = "home_respite"
	CategoryShortTermRespite ServiceCategory = "short_term_respite"
)

// categoryLabels is the single source of truth for valid categories and the
// labels written to exports.
var categoryLabels = map[ServiceCategory]string{
	CategoryTransport:        "交通接送",
	CategoryHomeRespite:      "居家喘息",
	CategoryShortTermRespite: "短照喘息",
}

var categoryOrder = []ServiceCategory{
	CategoryTransport,
	CategoryHomeRespite,
	CategoryShortTermRespite,
}

// ParseServiceCategory accepts either the code ("transport") or the Chinese
// label ("交通接送").
//
// Errors: CodeInvalidArgument when the value is empty or unsupported.
func ParseServiceCategory(s string) (ServiceCategory, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "category is required")
	}
	c := ServiceCategory(strings.ToLower(s))
	if c.IsValid() {
		return c, nil
	}
	for code, label := range categoryLabels {
		if label == s {
			return code, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidArgument, "unknown category: "+s)
}

// IsValid checks the category against the supported set.
func (c ServiceCategory) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label used in exports, or the raw code when unknown.
func (c ServiceCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c ServiceCategory) String() string {
	return string(c)
}

// Categories returns all supported categories in display order.
func Categories() []ServiceCategory {
	out := make([]ServiceCategory, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}
