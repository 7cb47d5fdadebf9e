package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const bom = "\uFEFF"

// normalizeHeader folds header text for exact matching: compatibility
// normalization, BOM removal and removal of all whitespace (Excel headers often
// carry line breaks).
func normalizeHeader(v string) string {
	v = strings.TrimPrefix(v, bom)
	v = norm.NFKC.String(v)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, v)
}

// cleanCell trims a data cell. Canonical composition only: full-width
// punctuation must survive because it delimits district lists.
func cleanCell(v string) string {
	v = strings.TrimPrefix(v, bom)
	return strings.TrimSpace(norm.NFC.String(v))
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return cleanCell(row[col])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cleanCell(cell) != "" {
			return false
		}
	}
	return true
}

// indexHeader maps normalized header text to its first column index.
func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, cell := range header {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func findColumn(idx map[string]int, name string) int {
	key := normalizeHeader(name)
	if key == "" {
		return -1
	}
	if i, ok := idx[key]; ok {
		return i
	}
	return -1
}
