// Package reader turns uploaded spreadsheet bytes into a raw roster.Table.
package reader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lin871229/lottery-app-v4/internal/roster"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// Extensions lists the upload formats Read understands.
var Extensions = []string{".xlsx", ".csv", ".tsv"}

// Read dispatches on the file extension of name.
//
// Errors:
//   - CodeInvalidArgument for unsupported extensions
//   - CodeBadRequest for content that cannot be parsed
func Read(name string, r io.Reader, preferredSheet string) (roster.Table, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".xlsx":
		return ReadXLSX(r, preferredSheet)
	case ".csv":
		return ReadCSV(r, ',')
	case ".tsv":
		return ReadCSV(r, '\t')
	default:
		return roster.Table{}, dErrors.New(dErrors.CodeInvalidArgument,
			fmt.Sprintf("unsupported roster format %q (supported: %s)", ext, strings.Join(Extensions, ", ")))
	}
}

// ReadXLSX reads preferredSheet, or the first sheet when preferredSheet is
// empty or absent. A missing preferred sheet yields a sheet-level warning.
func ReadXLSX(r io.Reader, preferredSheet string) (roster.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return roster.Table{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "unreadable workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return roster.Table{}, dErrors.New(dErrors.CodeBadRequest, "workbook has no sheets")
	}

	table := roster.Table{Sheet: sheets[0]}
	if preferredSheet != "" {
		if slices.Contains(sheets, preferredSheet) {
			table.Sheet = preferredSheet
		} else {
			table.Warnings = append(table.Warnings, roster.RowWarning{
				Reason: fmt.Sprintf("sheet %q not found; using %q", preferredSheet, sheets[0]),
			})
		}
	}

	rows, err := f.GetRows(table.Sheet)
	if err != nil {
		return roster.Table{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "read sheet "+table.Sheet)
	}
	table.Rows = rows
	return table, nil
}

// ReadCSV reads delimiter-separated text. A leading UTF-8 BOM is dropped and
// rows may have differing field counts.
func ReadCSV(r io.Reader, comma rune) (roster.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && string(head) == "\xEF\xBB\xBF" {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return roster.Table{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "unreadable csv")
		}
		rows = append(rows, record)
	}
	return roster.Table{Rows: rows}, nil
}
