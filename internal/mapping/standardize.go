package mapping

import (
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/table"
)

const (
	detailsSeparator = " | "
	detailsKeyValue  = ": "
)

// Standardize projects raw onto the canonical fields using m.
//
// It fails with *MappingError before reading rows when supplier or product is
// unmapped, and with a *ColumnError when m names a column raw lacks. Values
// are trimmed and missing cells become "". When details is unmapped it is
// built from the columns no field uses. Rows left without a supplier or
// product are dropped; the rest keep their order.
func Standardize(raw *table.Raw, m Mapping) ([]schema.Record, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	cols := make(map[schema.Field]int, len(schema.CanonicalOrder))
	for _, f := range schema.CanonicalOrder {
		name := m.Get(f)
		if name == "" {
			continue
		}
		i, ok := raw.Index(name)
		if !ok {
			return nil, &ColumnError{Field: f, Column: name}
		}
		cols[f] = i
	}

	var remaining []int
	if !m.Mapped(schema.FieldDetails) {
		remaining = remainingColumns(raw, m)
	}

	out := make([]schema.Record, 0, raw.Len())
	for r := range raw.Rows {
		var rec schema.Record
		for f, c := range cols {
			rec.Set(f, raw.Cell(r, c).Clean())
		}
		if remaining != nil {
			rec.Details = synthesizeDetails(raw, r, remaining)
		}
		if rec.HasRequired() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// remainingColumns returns, in table order, the columns m does not use.
func remainingColumns(raw *table.Raw, m Mapping) []int {
	used := m.Used()
	remaining := make([]int, 0, len(raw.Columns))
	for i, c := range raw.Columns {
		if !used[c] {
			remaining = append(remaining, i)
		}
	}
	return remaining
}

// synthesizeDetails joins "column: value" for every usable cell of row r in
// the given columns.
func synthesizeDetails(raw *table.Raw, r int, columns []int) string {
	var b strings.Builder
	for _, c := range columns {
		v := raw.Cell(r, c).Clean()
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(detailsSeparator)
		}
		b.WriteString(raw.Columns[c])
		b.WriteString(detailsKeyValue)
		b.WriteString(v)
	}
	return b.String()
}

// Canonical returns recs trimmed and filtered to those with a supplier and a
// product. Applying it to its own output changes nothing.
func Canonical(recs []schema.Record) []schema.Record {
	out := make([]schema.Record, 0, len(recs))
	for _, r := range recs {
		r = r.Trimmed()
		if r.HasRequired() {
			out = append(out, r)
		}
	}
	return out
}
