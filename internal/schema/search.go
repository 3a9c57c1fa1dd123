package schema

import "strings"

// Search returns the records where term appears, case-insensitively, in any
// of the given fields (all canonical fields when none are given). A blank
// term returns recs unchanged.
func Search(recs []Record, term string, fields ...Field) []Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return recs
	}
	if len(fields) == 0 {
		fields = CanonicalOrder
	}

	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(r.Get(f)), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
