package roster

import (
	"fmt"

	"github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// Columns names the header text of each semantic column. Only Name is required.
type Columns struct {
	Identifier   string `yaml:"identifier"`
	Remarks      string `yaml:"remarks"`
	Name         string `yaml:"name"`
	HomeDistrict string `yaml:"home_district"`
	Address      string `yaml:"address"`
	Phone        string `yaml:"phone"`
	Email        string `yaml:"email"`
	ServiceItems string `yaml:"service_items"`
}

// EligibilityColumn maps a free-text district list column to a category.
type EligibilityColumn struct {
	Column   string                 `yaml:"column"`
	Category domain.ServiceCategory `yaml:"category"`
}

// Layout is the declarative description of one roster format: where the header
// row is and which header text maps to which field.
type Layout struct {
	Name  string `yaml:"name"`
	Sheet string `yaml:"sheet"`
	// HeaderRow is 1-based. The legacy format carries two metadata rows, so its
	// header sits on row 3.
	HeaderRow   int                 `yaml:"header_row"`
	Columns     Columns             `yaml:"columns"`
	Eligibility []EligibilityColumn `yaml:"eligibility"`
}

// Validate checks the layout is usable.
//
// Errors: CodeInvalidArgument describing the first problem found.
func (l Layout) Validate() error {
	if l.HeaderRow < 1 {
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("layout %q: header_row must be >= 1", l.Name))
	}
	if normalizeHeader(l.Columns.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("layout %q: name column is required", l.Name))
	}
	if len(l.Eligibility) == 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("layout %q: at least one eligibility column is required", l.Name))
	}
	seen := make(map[domain.ServiceCategory]struct{}, len(l.Eligibility))
	for _, e := range l.Eligibility {
		if normalizeHeader(e.Column) == "" {
			return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("layout %q: eligibility column name is empty", l.Name))
		}
		if !e.Category.IsValid() {
			return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("layout %q: unknown category %q", l.Name, e.Category))
		}
		if _, dup := seen[e.Category]; dup {
			return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("layout %q: category %q mapped twice", l.Name, e.Category))
		}
		seen[e.Category] = struct{}{}
	}
	return nil
}

// optional returns the optional columns paired with their setters, in
// declaration order so warnings are stable.
func (c Columns) optional() []optionalColumn {
	return []optionalColumn{
		{c.Identifier, func(o *Organization, v string) { o.Identifier = v }},
		{c.Remarks, func(o *Organization, v string) { o.Remarks = v }},
		{c.HomeDistrict, func(o *Organization, v string) { o.HomeDistrict = v }},
		{c.Address, func(o *Organization, v string) { o.Contact.Address = v }},
		{c.Phone, func(o *Organization, v string) { o.Contact.Phone = v }},
		{c.Email, func(o *Organization, v string) { o.Contact.Email = v }},
		{c.ServiceItems, func(o *Organization, v string) { o.ServiceItems = v }},
	}
}

type optionalColumn struct {
	header string
	set    func(*Organization, string)
}
