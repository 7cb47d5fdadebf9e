// Package export renders a session's draw history as a downloadable table.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lin871229/lottery-app-v4/internal/ledger"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

const (
	// SheetName is the worksheet written by WriteXLSX.
	SheetName = "抽籤紀錄"
	// TimeLayout renders draw timestamps.
	TimeLayout = "2006-01-02 15:04:05"
	baseName   = "抽籤紀錄"
)

// Header is the first row of every export.
var Header = []string{"單位名稱", "抽籤欄位", "抽籤區域", "抽選時間"}

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv" in any case. Empty selects xlsx.
//
// Errors: CodeInvalidArgument for anything else.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unsupported export format %q", s))
	}
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f Format) FileName() string {
	return baseName + "." + string(f)
}

// Rows renders events below Header, timestamps converted to loc. A nil loc
// keeps the timestamps' own zone.
func Rows(events []ledger.Event, loc *time.Location) [][]string {
	rows := make([][]string, 0, len(events)+1)
	rows = append(rows, Header)
	for _, e := range events {
		at := e.DrawnAt
		if loc != nil {
			at = at.In(loc)
		}
		rows = append(rows, []string{
			e.OrganizationName,
			e.Category.Label(),
			e.District,
			at.Format(TimeLayout),
		})
	}
	return rows
}

// Write dispatches on format.
func Write(w io.Writer, format Format, events []ledger.Event, loc *time.Location) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, events, loc)
	case FormatXLSX:
		return WriteXLSX(w, events, loc)
	default:
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unsupported export format %q", format))
	}
}

// WriteCSV writes a UTF-8 BOM followed by CRLF-terminated records so the file
// opens correctly in Excel.
func WriteCSV(w io.Writer, events []ledger.Event, loc *time.Location) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write csv bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.WriteAll(Rows(events, loc)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a single SheetName sheet and a bold header.
func WriteXLSX(w io.Writer, events []ledger.Event, loc *time.Location) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for i, row := range Rows(events, loc) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 36); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "D", 20); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
