package draw

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lin871229/lottery-app-v4/internal/district"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	"github.com/lin871229/lottery-app-v4/pkg/domain"
)

// buildRoster normalizes rows of {name, transport areas, home respite areas}.
func buildRoster(t *testing.T, rows ...[]string) []roster.Organization {
	t.Helper()
	layout := roster.Layout{
		Name:      "test",
		HeaderRow: 1,
		Columns:   roster.Columns{Name: "單位名稱"},
		Eligibility: []roster.EligibilityColumn{
			{Column: "交通", Category: domain.CategoryTransport},
			{Column: "居家", Category: domain.CategoryHomeRespite},
		},
	}
	table := roster.Table{Rows: append([][]string{{"單位名稱", "交通", "居家"}}, rows...)}
	result, err := roster.Normalize(table, layout, district.Kaohsiung())
	require.NoError(t, err)
	return result.Organizations()
}

func ids(orgs []roster.Organization) []string {
	out := make([]string, len(orgs))
	for i, o := range orgs {
		out[i] = o.ID
	}
	return out
}

// fixedRandom always returns the same offset, clamped to n-1.
type fixedRandom int

func (f fixedRandom) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}
