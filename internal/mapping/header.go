package mapping

import (
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/table"
)

var headerReplacer = strings.NewReplacer("\n", " ", "\t", " ")

// NormalizeHeader canonicalizes a raw column label for matching: surrounding
// whitespace is trimmed, letters are lowercased and each newline or tab
// becomes a single space. Internal spacing and punctuation are kept.
func NormalizeHeader(h string) string {
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(h)))
}

// NormalizeHeaders returns a copy of raw with every column label normalized.
//
// When two labels normalize to the same string the first column wins; later
// columns with that name are dropped from the result and their normalized
// names are returned as collisions, once per dropped column.
func NormalizeHeaders(raw *table.Raw) (*table.Raw, []string) {
	keep := make([]int, 0, len(raw.Columns))
	cols := make([]string, 0, len(raw.Columns))
	seen := make(map[string]bool, len(raw.Columns))
	var collisions []string

	for i, c := range raw.Columns {
		n := NormalizeHeader(c)
		if seen[n] {
			collisions = append(collisions, n)
			continue
		}
		seen[n] = true
		keep = append(keep, i)
		cols = append(cols, n)
	}

	rows := make([]table.Row, len(raw.Rows))
	for r := range raw.Rows {
		row := make(table.Row, len(keep))
		for j, c := range keep {
			row[j] = raw.Cell(r, c)
		}
		rows[r] = row
	}

	return table.New(cols, rows), collisions
}
