// Package export writes supplier records as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

// Format is a download file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultSheet names the worksheet when none is given.
const DefaultSheet = "Master_List"

const maxSheetName = 31

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv" or "xlsx" in any case. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type for a format.
func ContentType(f Format) string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName appends the format extension to base.
func FileName(base string, f Format) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "suppliers"
	}
	return base + "." + string(f)
}

// Header returns the column titles for an export.
func Header(withIDs bool) []string {
	names := schema.DisplayNames()
	if !withIDs {
		return names
	}
	return append([]string{schema.RecordIDLabel}, names...)
}

func rowValues(rec schema.Record, withIDs bool) []string {
	vals := rec.Values()
	if !withIDs {
		return vals
	}
	return append([]string{strconv.FormatInt(rec.ID, 10)}, vals...)
}

// Write encodes recs to w in the given format. withIDs prepends the record
// id column. sheet is ignored for CSV.
func Write(w io.Writer, format Format, sheet string, recs []schema.Record, withIDs bool) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, recs, withIDs)
	case FormatXLSX:
		return writeXLSX(w, SheetName(sheet), recs, withIDs)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeCSV(w io.Writer, recs []schema.Record, withIDs bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(withIDs)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range recs {
		if err := cw.Write(rowValues(rec, withIDs)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SheetName makes name acceptable to Excel: reserved characters removed,
// at most 31 characters, DefaultSheet when nothing is left.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		return DefaultSheet
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}
