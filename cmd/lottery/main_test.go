package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lin871229/lottery-app-v4/internal/export"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
)

const transportRoster = "單位名稱,服務區域\n甲,左營區、鼓山區\n乙,左營區\n丙,鼓山區\n"

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "名冊.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParsePick(t *testing.T) {
	tests := []struct {
		in      string
		want    pick
		wantErr bool
	}{
		{in: "transport:左營區:2", want: pick{Category: id.CategoryTransport, District: "左營區", Count: 2}},
		{in: "居家喘息:鳳山區", want: pick{Category: id.CategoryHomeRespite, District: "鳳山區", Count: 1}},
		{in: "transport", wantErr: true},
		{in: "transport::1", wantErr: true},
		{in: "bus:左營區", wantErr: true},
		{in: "transport:左營區:0", wantErr: true},
		{in: "transport:左營區:x", wantErr: true},
		{in: "transport:左營區:1:2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePick(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parsePicks(nil)
	assert.Error(t, err)
}

func TestDistrictsCommand(t *testing.T) {
	out, _, err := execute(t, "districts")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 38)
	assert.Equal(t, "鹽埕區", lines[0])
}

func TestRosterInspect(t *testing.T) {
	path := writeRoster(t, transportRoster+"丁,台北市\n")

	out, _, err := execute(t, "roster", "inspect", path, "--layout", "transport", "--orgs")
	require.NoError(t, err)

	assert.Contains(t, out, "layout: transport")
	assert.Contains(t, out, "organizations: 4")
	assert.Contains(t, out, "交通接送: 鼓山區、左營區")
	assert.Contains(t, out, "warnings: 1")
}

func TestRosterInspectUnknownLayout(t *testing.T) {
	_, _, err := execute(t, "roster", "inspect", writeRoster(t, transportRoster), "--layout", "nope")
	assert.Error(t, err)
}

func TestDrawCommand(t *testing.T) {
	path := writeRoster(t, transportRoster)
	exportPath := filepath.Join(t.TempDir(), "out.csv")

	out, _, err := execute(t, "draw", path, "--layout", "transport", "--seed", "7",
		"--pick", "transport:左營區:2", "--pick", "transport:鼓山區", "--export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "交通接送 左營區")
	assert.Contains(t, out, "exported to "+exportPath)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\uFEFF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, export.Header, records[0])

	// 左營區 drew 甲 and 乙, so 鼓山區 can only yield 丙.
	assert.Equal(t, []string{"丙", "交通接送", "鼓山區"}, records[3][:3])
}

func TestDrawCommandReportsInsufficientPool(t *testing.T) {
	path := writeRoster(t, transportRoster)

	out, stderr, err := execute(t, "draw", path, "--layout", "transport",
		"--pick", "transport:左營區:5", "--pick", "transport:鼓山區:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, stderr, "requested 5, available 2")
	assert.Contains(t, out, "交通接送 鼓山區")
}

func TestDrawCommandXLSXExport(t *testing.T) {
	path := writeRoster(t, transportRoster)
	exportPath := filepath.Join(t.TempDir(), "out.xlsx")

	_, _, err := execute(t, "draw", path, "--layout", "transport", "--pick", "transport:鼓山區:2", "--export", exportPath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(exportPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestDrawCommandRejectsBadExportExtension(t *testing.T) {
	_, _, err := execute(t, "draw", writeRoster(t, transportRoster), "--layout", "transport",
		"--pick", "transport:左營區", "--export", "out.pdf")
	assert.Error(t, err)
}
