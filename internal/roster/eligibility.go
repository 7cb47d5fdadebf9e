package roster

import (
	"sort"
	"strings"

	"github.com/lin871229/lottery-app-v4/internal/district"
	pstrings "github.com/lin871229/lottery-app-v4/pkg/platform/strings"
)

// Delimiters separate districts inside a free-text eligibility cell.
const Delimiters = "、，()（）\n"

// ParseDistricts extracts the catalog districts named in a free-text cell.
// Tokens that are empty, lack the district suffix, or are not exact catalog
// members are discarded silently. The result is deduplicated and in catalog
// order; a blank cell yields an empty set.
func ParseDistricts(text string, catalog *district.Catalog) []string {
	tokens := pstrings.DedupeAndTrim(pstrings.SplitAny(text, Delimiters))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !strings.Contains(token, district.Suffix) {
			continue
		}
		if !catalog.IsValid(token) {
			continue
		}
		out = append(out, token)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return catalog.Index(out[i]) < catalog.Index(out[j])
	})
	return out
}
