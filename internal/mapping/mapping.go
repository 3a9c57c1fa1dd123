package mapping

import (
	"sort"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

// NotMapped is the choice presented to users for leaving a field unmapped.
const NotMapped = "(not mapped)"

// Mapping assigns each canonical field a raw column name. An absent key or an
// empty value means the field is unmapped.
type Mapping map[schema.Field]string

// Get returns the column mapped to f, or "".
func (m Mapping) Get(f schema.Field) string {
	return m[f]
}

// Mapped reports whether f has a column.
func (m Mapping) Mapped(f schema.Field) bool {
	return m[f] != ""
}

// Missing returns the required fields that are unmapped, in canonical order.
func (m Mapping) Missing() []schema.Field {
	var missing []schema.Field
	for _, f := range schema.RequiredFields {
		if !m.Mapped(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Validate returns a *MappingError when a required field is unmapped.
func (m Mapping) Validate() error {
	if missing := m.Missing(); len(missing) > 0 {
		return &MappingError{Missing: missing}
	}
	return nil
}

// Used returns the set of raw columns referenced by any field.
func (m Mapping) Used() map[string]bool {
	used := make(map[string]bool, len(m))
	for _, col := range m {
		if col != "" {
			used[col] = true
		}
	}
	return used
}

// SharedColumns returns the raw columns selected by more than one field,
// sorted. The standardizer accepts this, but it usually means the sheet or
// the override is wrong.
func (m Mapping) SharedColumns() []string {
	count := make(map[string]int, len(m))
	for _, f := range schema.CanonicalOrder {
		if col := m[f]; col != "" {
			count[col]++
		}
	}
	var shared []string
	for col, n := range count {
		if n > 1 {
			shared = append(shared, col)
		}
	}
	sort.Strings(shared)
	return shared
}

// With returns a copy of m where every key present in override replaces the
// inferred choice. An empty override value unmaps the field.
func (m Mapping) With(override Mapping) Mapping {
	out := make(Mapping, len(schema.CanonicalOrder))
	for _, f := range schema.CanonicalOrder {
		out[f] = m[f]
	}
	for f, col := range override {
		out[f] = col
	}
	return out
}

// Options lists the choices for a mapping selector: NotMapped followed by
// every column in order.
func Options(columns []string) []string {
	opts := make([]string, 0, len(columns)+1)
	opts = append(opts, NotMapped)
	return append(opts, columns...)
}

// ParseOverride converts user choices keyed by field name ("login_info" or
// "Login Info") into a Mapping. NotMapped and "" both mean unmapped. Choices
// must name one of columns.
func ParseOverride(choices map[string]string, columns []string) (Mapping, error) {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	m := make(Mapping, len(choices))
	for key, choice := range choices {
		f, err := schema.ParseField(key)
		if err != nil {
			return nil, err
		}
		if choice == NotMapped {
			choice = ""
		}
		if choice != "" && !known[choice] {
			return nil, &ColumnError{Field: f, Column: choice}
		}
		m[f] = choice
	}
	return m, nil
}
