package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/supplierdb/internal/store"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const vendorsCSV = "Vendor,Item,Web Site,Notes\n" +
	"Acme,Anvils,acme.example,fragile\n" +
	"Globex,,globex.example,\n" +
	"Initech,Staplers,,red ones\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestInspect_Table(t *testing.T) {
	path := writeFile(t, "vendors.csv", vendorsCSV)

	out, _, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows, 4 columns")
	assert.Contains(t, out, "| Supplier ")
	assert.Contains(t, out, "vendor")
	assert.Contains(t, out, "(not mapped)")
	assert.NotContains(t, out, "required mapping missing")
}

func TestInspect_ReportsMissingAndCollisions(t *testing.T) {
	path := writeFile(t, "odd.csv", "Company,Notes,NOTES\nAcme,a,b\n")

	out, _, err := run(t, "inspect", path, "-o", "json")
	require.NoError(t, err)
	var report inspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"company", "notes"}, report.Columns)
	assert.Equal(t, []string{"notes"}, report.Collisions)
	assert.Equal(t, "company", report.Mapping[0].Column)
	assert.Equal(t, "(not mapped)", report.Mapping[1].Column)
	require.Len(t, report.Missing, 1)
	assert.EqualValues(t, "product", report.Missing[0])
}

func TestPreview_YAML(t *testing.T) {
	path := writeFile(t, "vendors.csv", vendorsCSV)

	out, _, err := run(t, "preview", path, "-o", "yaml")
	require.NoError(t, err)
	var report previewReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.InputRows)
	assert.Equal(t, 2, report.ValidRows)
	assert.Equal(t, 1, report.DroppedRows)
	require.Len(t, report.Records, 2)
	assert.Equal(t, "Acme", report.Records[0].Supplier)
	assert.Equal(t, "fragile", report.Records[0].Details)
	assert.Empty(t, report.Records[0].Website, "\"web site\" is not an alias")
}

func TestPreview_TableAndWarnings(t *testing.T) {
	path := writeFile(t, "vendors.csv", vendorsCSV)

	out, errOut, err := run(t, "preview", path, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.NotContains(t, out, "Initech")
	assert.Contains(t, out, "2 of 3 rows are valid; showing 1")
	assert.Contains(t, errOut, "1 row(s) without Supplier or Product will be skipped")
}

func TestPreview_MapOverrides(t *testing.T) {
	path := writeFile(t, "vendors.csv", vendorsCSV)

	out, _, err := run(t, "preview", path, "-o", "json", "--map", `website="Web Site"`, "-m", "details=")
	require.NoError(t, err)
	var report previewReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "acme.example", report.Records[0].Website)
	assert.Equal(t, "notes: fragile", report.Records[0].Details)

	_, _, err = run(t, "preview", path, "--map", "product=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required mapping missing: Product must be mapped")

	_, _, err = run(t, "preview", path, "--map", "product=Colour")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")

	_, _, err = run(t, "preview", path, "--map", "product")
	assert.ErrorContains(t, err, "want field=column")

	_, _, err = run(t, "preview", path, "-o", "xml")
	assert.ErrorContains(t, err, "invalid --output")
}

func TestConvert(t *testing.T) {
	path := writeFile(t, "vendors.csv", vendorsCSV)
	dir := t.TempDir()

	csvOut := filepath.Join(dir, "clean.csv")
	out, _, err := run(t, "convert", path, "-o", csvOut)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 records")
	data, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Supplier,Product,Details,Website,Phone,Login Info", strings.TrimSpace(lines[0]))

	xlsxOut := filepath.Join(dir, "clean.xlsx")
	_, _, err = run(t, "convert", path, "-o", xlsxOut, "--sheet-name", "Vendors")
	require.NoError(t, err)
	f, err := excelize.OpenFile(xlsxOut)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Vendors")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Initech", rows[2][0])

	_, _, err = run(t, "convert", path, "-o", filepath.Join(dir, "clean"))
	assert.ErrorContains(t, err, "unknown export format")

	_, _, err = run(t, "convert", path)
	assert.Error(t, err, "--output is required")
}

func TestImport_ReplacesOnlyWithYes(t *testing.T) {
	mem := store.NewMemory()
	prev := openStore
	openStore = func(context.Context, string, bool) (store.Store, error) { return nopClose{mem}, nil }
	t.Cleanup(func() { openStore = prev })

	path := writeFile(t, "vendors.csv", vendorsCSV)

	out, _, err := run(t, "import", path, "--dataset", "Q3")
	require.NoError(t, err)
	assert.Contains(t, out, `created dataset "Q3"`)
	assert.Contains(t, out, "2 records written")

	_, _, err = run(t, "import", path, "--dataset", "Q3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, _, err = run(t, "import", path, "--dataset", "Q3", "--yes", "--map", "details=")
	require.NoError(t, err)
	assert.Contains(t, out, `replaced dataset "Q3"`)

	ds, err := mem.ListDatasets(t.Context())
	require.NoError(t, err)
	require.Len(t, ds, 1)
	recs, err := mem.LoadRecords(t.Context(), ds[0].ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "web site: acme.example | notes: fragile", recs[0].Details)
}

func TestImport_RequiresDatabaseURL(t *testing.T) {
	path := writeFile(t, "vendors.csv", vendorsCSV)
	_, _, err := run(t, "import", path, "--database-url", "")
	assert.ErrorContains(t, err, "database URL required")
}

// nopClose keeps the shared memory store usable across command runs.
type nopClose struct{ store.Store }

func (nopClose) Close() {}

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	err := renderTable(&buf, []string{"Supplier", "Product"}, [][]string{
		{"東京商事", "茶"},
		{"Acme", "multi\nline   text"},
		{"short"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	width := runewidth.StringWidth(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, runewidth.StringWidth(l), l)
	}
	assert.Contains(t, buf.String(), "multi line text")
}

func TestCell_Truncates(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := cell(long)
	assert.Equal(t, maxCellWidth, runewidth.StringWidth(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}
