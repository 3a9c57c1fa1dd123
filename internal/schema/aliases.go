package schema

// AliasTable maps each canonical field to header spellings considered
// equivalent. Order matters: the first alias present in a sheet wins.
type AliasTable map[Field][]string

// Aliases is the built-in alias table. It is not editable at runtime.
var Aliases = AliasTable{
	FieldSupplier: {
		"supplier", "supplier name", "vendor", "vendor name", "company", "company name",
		"supplier_id", "supplier id", "supplierid",
	},
	FieldProduct:   {"product", "product name", "item", "item name", "sku", "service"},
	FieldDetails:   {"details", "detail", "description", "notes", "product details"},
	FieldWebsite:   {"website", "url", "web", "link"},
	FieldPhone:     {"phone", "telephone", "tel", "contact number", "mobile"},
	FieldLoginInfo: {"login info", "login", "login details", "credentials", "account", "notes (login)", "login/notes"},
}

// For returns the aliases of f in priority order.
func (a AliasTable) For(f Field) []string {
	return a[f]
}
