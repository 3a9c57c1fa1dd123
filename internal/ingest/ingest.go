// Package ingest reads uploaded spreadsheets into table.Raw values.
//
// Supported inputs are Excel workbooks (.xlsx, .xlsm) read with excelize,
// and delimited text (.csv, .tsv, .txt). Text files may be UTF-8 (with or
// without BOM), UTF-16 with BOM, or Windows-1252; the delimiter is sniffed
// from the first few records.
//
// The first non-blank row is the header. Blank header cells are named
// "unnamed: N" after their zero-based position. Blank data rows are skipped
// and empty cells become missing cells.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/table"
)

var (
	ErrEmptyFile         = errors.New("empty file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoHeader          = errors.New("no header row found")
	ErrSheetNotFound     = errors.New("sheet not found")
)

// DefaultMaxBytes is used when Options.MaxBytes is unset.
const DefaultMaxBytes int64 = 100 * 1024 * 1024

// Format identifies how an upload is decoded.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
)

// Options controls parsing.
type Options struct {
	// Sheet selects a workbook sheet by name; the first sheet is used when empty.
	Sheet string

	// MaxBytes rejects larger inputs with ErrFileTooLarge (default: 100MB).
	MaxBytes int64
}

// DetectFormat picks a Format from the file extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// Parse reads the upload named fileName from r.
func Parse(fileName string, r io.Reader, opts Options) (*table.Raw, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	data, err := readLimited(r, opts.MaxBytes)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readWorkbook(data, opts.Sheet)
	case FormatTSV:
		records, err = readDelimited(data, '\t')
	default:
		records, err = readDelimited(data, 0)
	}
	if err != nil {
		return nil, err
	}

	return buildTable(records)
}

// readLimited reads all of r, failing once more than max bytes arrive.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: exceeds %s limit", ErrFileTooLarge, formatSize(max))
	}
	return data, nil
}

// buildTable turns string records into a Raw table.
func buildTable(records [][]string) (*table.Raw, error) {
	start := -1
	for i, rec := range records {
		if !isBlank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	header := records[start]
	width := len(header)
	for _, rec := range records[start+1:] {
		if len(rec) > width {
			width = len(rec)
		}
	}

	columns := make([]string, width)
	for i := range columns {
		var name string
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("unnamed: %d", i)
		}
		columns[i] = name
	}

	rows := make([]table.Row, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(table.Row, width)
		for i := range row {
			if i < len(rec) && rec[i] != "" {
				row[i] = table.Text(rec[i])
			}
		}
		rows = append(rows, row)
	}

	return table.New(columns, rows), nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func formatSize(n int64) string {
	if n >= 1024*1024 && n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	return fmt.Sprintf("%d bytes", n)
}
