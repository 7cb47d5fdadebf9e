package roster

import (
	"fmt"

	"github.com/lin871229/lottery-app-v4/internal/district"
	"github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

const (
	reasonColumnMissing  = "column not found"
	reasonNameMissing    = "organization name is blank; row dropped"
	reasonDuplicateName  = "duplicate organization name; first occurrence kept"
	reasonNoEligibleArea = "no recognized district in eligibility list"
)

type eligibilityBinding struct {
	category domain.ServiceCategory
	header   string
	col      int
}

// Normalize converts a raw table into organization records following layout.
// Eligibility text is filtered against catalog.
//
// Errors:
//   - CodeInvalidArgument if the layout itself is invalid
//   - CodeSchema if the header row is missing, the name column is absent, or
//     none of the layout's eligibility columns exist
//
// Non-fatal findings (missing optional columns, dropped rows) are reported as
// warnings on the result.
func Normalize(table Table, layout Layout, catalog *district.Catalog) (*Result, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	headerIdx := layout.HeaderRow - 1
	if headerIdx >= len(table.Rows) {
		return nil, dErrors.New(dErrors.CodeSchema,
			fmt.Sprintf("header row %d not found: sheet has %d rows", layout.HeaderRow, len(table.Rows)))
	}
	header := indexHeader(table.Rows[headerIdx])

	result := newResult(layout.Name, table.Sheet)
	result.Warnings = append(result.Warnings, table.Warnings...)

	nameCol := findColumn(header, layout.Columns.Name)
	if nameCol < 0 {
		return nil, dErrors.New(dErrors.CodeSchema,
			fmt.Sprintf("required column %q not found in header row %d", layout.Columns.Name, layout.HeaderRow))
	}

	bindings := make([]eligibilityBinding, 0, len(layout.Eligibility))
	for _, e := range layout.Eligibility {
		col := findColumn(header, e.Column)
		if col < 0 {
			result.Warnings = append(result.Warnings, RowWarning{Column: e.Column, Reason: reasonColumnMissing})
			continue
		}
		bindings = append(bindings, eligibilityBinding{category: e.Category, header: e.Column, col: col})
		result.Categories = append(result.Categories, e.Category)
	}
	if len(bindings) == 0 {
		return nil, dErrors.New(dErrors.CodeSchema, "no eligibility column found in header row")
	}

	type boundOptional struct {
		col int
		set func(*Organization, string)
	}
	optionals := make([]boundOptional, 0, 7)
	for _, oc := range layout.Columns.optional() {
		if normalizeHeader(oc.header) == "" {
			continue
		}
		col := findColumn(header, oc.header)
		if col < 0 {
			result.Warnings = append(result.Warnings, RowWarning{Column: oc.header, Reason: reasonColumnMissing})
			continue
		}
		optionals = append(optionals, boundOptional{col: col, set: oc.set})
	}

	for i := headerIdx + 1; i < len(table.Rows); i++ {
		row := table.Rows[i]
		sheetRow := i + 1
		if isBlankRow(row) {
			continue
		}

		name := cellAt(row, nameCol)
		if name == "" {
			result.Warnings = append(result.Warnings, RowWarning{Row: sheetRow, Column: layout.Columns.Name, Reason: reasonNameMissing})
			continue
		}
		if result.has(name) {
			result.Warnings = append(result.Warnings, RowWarning{Row: sheetRow, Column: layout.Columns.Name, Reason: reasonDuplicateName})
			continue
		}

		org := Organization{
			ID:          name,
			Name:        name,
			Row:         sheetRow,
			eligibility: make(map[domain.ServiceCategory][]string, len(bindings)),
		}
		for _, opt := range optionals {
			opt.set(&org, cellAt(row, opt.col))
		}
		for _, b := range bindings {
			raw := cellAt(row, b.col)
			districts := ParseDistricts(raw, catalog)
			if len(districts) == 0 {
				if raw != "" {
					result.Warnings = append(result.Warnings, RowWarning{Row: sheetRow, Column: b.header, Reason: reasonNoEligibleArea})
				}
				continue
			}
			org.eligibility[b.category] = districts
		}
		result.add(org)
	}

	return result, nil
}
