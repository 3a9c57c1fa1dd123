package mapping

import "github.com/JonMunkholm/supplierdb/internal/schema"

// Resolve infers a Mapping from normalized headers using the built-in alias
// table.
func Resolve(headers []string) Mapping {
	return ResolveWith(schema.Aliases, headers)
}

// ResolveWith infers a Mapping using aliases. For each canonical field the
// aliases are tried in order and the first one present among headers wins.
// Header order does not matter, and one header may satisfy several fields.
func ResolveWith(aliases schema.AliasTable, headers []string) Mapping {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	m := make(Mapping, len(schema.CanonicalOrder))
	for _, f := range schema.CanonicalOrder {
		m[f] = ""
		for _, alias := range aliases.For(f) {
			if a := NormalizeHeader(alias); present[a] {
				m[f] = a
				break
			}
		}
	}
	return m
}
