// Package schema defines the canonical supplier record: its six fields, their
// display labels, the header alias table used to recognise them in uploaded
// spreadsheets, and record-level search.
package schema

import (
	"errors"
	"fmt"
)

// Field is one of the six canonical record keys.
type Field string

const (
	FieldSupplier  Field = "supplier"
	FieldProduct   Field = "product"
	FieldDetails   Field = "details"
	FieldWebsite   Field = "website"
	FieldPhone     Field = "phone"
	FieldLoginInfo Field = "login_info"
)

// CanonicalOrder is the display order of the canonical fields.
var CanonicalOrder = []Field{
	FieldSupplier,
	FieldProduct,
	FieldDetails,
	FieldWebsite,
	FieldPhone,
	FieldLoginInfo,
}

// RequiredFields must be mapped (and non-empty per row) for an import to succeed.
var RequiredFields = []Field{FieldSupplier, FieldProduct}

// FieldSpec describes how a canonical field is presented and validated.
type FieldSpec struct {
	Field    Field
	Label    string // Display label: "Login Info"
	Required bool   // Must be mapped and non-empty
	Multi    bool   // Rendered as a multi-line input
}

// SupplierFieldSpecs lists the canonical fields in display order.
var SupplierFieldSpecs = []FieldSpec{
	{Field: FieldSupplier, Label: "Supplier", Required: true},
	{Field: FieldProduct, Label: "Product", Required: true},
	{Field: FieldDetails, Label: "Details", Multi: true},
	{Field: FieldWebsite, Label: "Website"},
	{Field: FieldPhone, Label: "Phone"},
	{Field: FieldLoginInfo, Label: "Login Info"},
}

// RecordIDLabel is the display label for a stored record's identifier.
const RecordIDLabel = "Record ID"

// Spec returns the FieldSpec for f.
func Spec(f Field) (FieldSpec, bool) {
	for _, s := range SupplierFieldSpecs {
		if s.Field == f {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// DisplayName returns the human label for f, or the raw key when f is unknown.
func DisplayName(f Field) string {
	if s, ok := Spec(f); ok {
		return s.Label
	}
	return string(f)
}

// DisplayNames returns the labels of all canonical fields in display order.
func DisplayNames() []string {
	names := make([]string, len(CanonicalOrder))
	for i, f := range CanonicalOrder {
		names[i] = DisplayName(f)
	}
	return names
}

// IsRequired reports whether f must be mapped and non-empty.
func IsRequired(f Field) bool {
	s, ok := Spec(f)
	return ok && s.Required
}

// ErrUnknownField is returned by ParseField.
var ErrUnknownField = errors.New("unknown field")

// ParseField converts a key ("login_info") or a display label ("Login Info")
// into a Field.
func ParseField(s string) (Field, error) {
	for _, spec := range SupplierFieldSpecs {
		if s == string(spec.Field) || s == spec.Label {
			return spec.Field, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownField, s)
}
