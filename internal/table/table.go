// Package table defines the in-memory tabular value shared by ingestion and
// the mapping engine: ordered named columns and ordered rows of scalar cells.
package table

import (
	"strconv"
	"strings"
)

// CellKind identifies the scalar type held by a Cell.
type CellKind int

const (
	KindMissing CellKind = iota
	KindText
	KindNumber
)

// Cell is a single scalar value read from a spreadsheet.
// The zero value is a missing cell.
type Cell struct {
	Kind   CellKind
	text   string
	number float64
}

// Text returns a text cell.
func Text(s string) Cell {
	return Cell{Kind: KindText, text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell {
	return Cell{Kind: KindNumber, number: f}
}

// Missing returns a missing cell.
func Missing() Cell {
	return Cell{}
}

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool {
	return c.Kind == KindMissing
}

// String renders the cell as text. Missing cells render as "".
// Whole numbers render without a fractional part.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.text
	case KindNumber:
		return strconv.FormatFloat(c.number, 'f', -1, 64)
	default:
		return ""
	}
}

// Clean returns the trimmed text of the cell. Missing cells and the literal
// "nan" (any case) clean to "". Markers such as "N/A" or "NULL" are kept.
func (c Cell) Clean() string {
	s := strings.TrimSpace(c.String())
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// Row is a sequence of cells aligned with Raw.Columns.
type Row []Cell

// Raw is an uploaded table before mapping. Column names are kept in file
// order; Rows may be shorter than Columns, in which case trailing cells are
// missing. Build it with New and treat Columns as read-only afterwards.
type Raw struct {
	Columns []string
	Rows    []Row

	index map[string]int
}

// New builds a Raw table from columns and rows.
func New(columns []string, rows []Row) *Raw {
	t := &Raw{Columns: columns, Rows: rows}
	t.index = make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *Raw) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name. If the name appears more than
// once the first occurrence is returned.
func (t *Raw) Index(name string) (int, bool) {
	if t.index == nil {
		for i, c := range t.Columns {
			if c == name {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether column name exists.
func (t *Raw) Has(name string) bool {
	_, ok := t.Index(name)
	return ok
}

// Cell returns the cell at row r, column c. Out of range positions are missing.
func (t *Raw) Cell(r, c int) Cell {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return Missing()
	}
	return t.Rows[r][c]
}

// Get returns the cell at row r in the named column.
func (t *Raw) Get(r int, column string) Cell {
	c, ok := t.Index(column)
	if !ok {
		return Missing()
	}
	return t.Cell(r, c)
}

// Clone returns a deep copy, so callers never share rows across imports.
func (t *Raw) Clone() *Raw {
	cols := append([]string(nil), t.Columns...)
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append(Row(nil), r...)
	}
	return New(cols, rows)
}
