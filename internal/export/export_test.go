package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

var sample = []schema.Record{
	{ID: 7, Supplier: "Acme", Product: "Bolts", Phone: "555-1234"},
	{ID: 9, Supplier: "Beta, Inc", Product: "Nuts", Details: "line1\nline2"},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{" Csv ", FormatCSV, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "", sample, false))

	lines := strings.SplitN(buf.String(), "\n", 2)
	assert.Equal(t, strings.Join(schema.DisplayNames(), ","), lines[0])
	assert.Contains(t, buf.String(), `"Beta, Inc"`)
	assert.Contains(t, buf.String(), "\"line1\nline2\"")
}

func TestWriteCSVWithIDs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "", sample[:1], true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], schema.RecordIDLabel+","))
	assert.True(t, strings.HasPrefix(lines[1], "7,Acme,Bolts"))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, "", sample, false))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, schema.DisplayNames(), rows[0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "Beta, Inc", rows[2][0])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, "Search Results", nil, true))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Search Results")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, schema.RecordIDLabel, rows[0][0])
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("pdf"), "", sample, false)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", DefaultSheet},
		{"Vendors", "Vendors"},
		{"a/b:c?d*[e]", "abcde"},
		{"'quoted'", "quoted"},
		{"///", DefaultSheet},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SheetName(tt.in), tt.in)
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
	assert.Equal(t, "Main.xlsx", FileName("Main", FormatXLSX))
	assert.Equal(t, "suppliers.csv", FileName(" ", FormatCSV))
}
