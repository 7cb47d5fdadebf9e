// Package roster turns a raw tabular roster into validated organization records
// with parsed per-category district eligibility.
package roster

import (
	"fmt"
	"slices"

	"github.com/lin871229/lottery-app-v4/pkg/domain"
)

// Table is a raw, row-major roster sheet as read from an upload.
type Table struct {
	Sheet string
	Rows  [][]string
	// Warnings raised while reading (e.g. preferred sheet missing).
	Warnings []RowWarning
}

// Contact holds opaque pass-through contact fields.
type Contact struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Organization is a normalized roster entry. It is never mutated after
// Normalize returns; eligibility is only reachable through copying accessors.
type Organization struct {
	// ID is the organization name, unique within a roster.
	ID           string
	Identifier   string
	Name         string
	Remarks      string
	HomeDistrict string
	Contact      Contact
	ServiceItems string
	// Row is the 1-based sheet row the record came from.
	Row int

	eligibility map[domain.ServiceCategory][]string
}

// Districts returns the districts the organization may serve under category,
// in catalog order.
func (o Organization) Districts(category domain.ServiceCategory) []string {
	return slices.Clone(o.eligibility[category])
}

// EligibleFor reports whether district is in the organization's eligibility set
// for category.
func (o Organization) EligibleFor(category domain.ServiceCategory, district string) bool {
	return slices.Contains(o.eligibility[category], district)
}

// Eligibility returns a deep copy of the category → districts mapping.
func (o Organization) Eligibility() map[domain.ServiceCategory][]string {
	out := make(map[domain.ServiceCategory][]string, len(o.eligibility))
	for c, d := range o.eligibility {
		out[c] = slices.Clone(d)
	}
	return out
}

// RowWarning is a non-fatal normalization finding. Row 0 marks sheet-level
// warnings such as a missing optional column.
type RowWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}

func (w RowWarning) String() string {
	switch {
	case w.Row == 0 && w.Column != "":
		return fmt.Sprintf("column %q: %s", w.Column, w.Reason)
	case w.Row == 0:
		return w.Reason
	case w.Column != "":
		return fmt.Sprintf("row %d, column %q: %s", w.Row, w.Column, w.Reason)
	default:
		return fmt.Sprintf("row %d: %s", w.Row, w.Reason)
	}
}

// Result is the outcome of normalizing one roster. It is shared read-only
// between every session that draws from it.
type Result struct {
	Layout     string
	Sheet      string
	Warnings   []RowWarning
	Categories []domain.ServiceCategory

	organizations []Organization
	byID          map[string]int
}

func newResult(layout, sheet string) *Result {
	return &Result{
		Layout: layout,
		Sheet:  sheet,
		byID:   make(map[string]int),
	}
}

func (r *Result) add(org Organization) {
	r.byID[org.ID] = len(r.organizations)
	r.organizations = append(r.organizations, org)
}

func (r *Result) has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Organizations returns the records in roster order. The slice is a copy.
func (r *Result) Organizations() []Organization {
	return slices.Clone(r.organizations)
}

// Len returns the number of organizations.
func (r *Result) Len() int {
	return len(r.organizations)
}

// SupportsCategory reports whether the roster had an eligibility column for category.
func (r *Result) SupportsCategory(category domain.ServiceCategory) bool {
	return slices.Contains(r.Categories, category)
}
