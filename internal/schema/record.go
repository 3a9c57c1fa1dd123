package schema

import "strings"

// Record is a standardized supplier/product row. Fields are trimmed strings;
// missing values are "". ID is zero until the record is stored.
type Record struct {
	ID        int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Supplier  string `json:"supplier" yaml:"supplier"`
	Product   string `json:"product" yaml:"product"`
	Details   string `json:"details" yaml:"details"`
	Website   string `json:"website" yaml:"website"`
	Phone     string `json:"phone" yaml:"phone"`
	LoginInfo string `json:"login_info" yaml:"login_info"`
}

// Get returns the value of field f.
func (r Record) Get(f Field) string {
	switch f {
	case FieldSupplier:
		return r.Supplier
	case FieldProduct:
		return r.Product
	case FieldDetails:
		return r.Details
	case FieldWebsite:
		return r.Website
	case FieldPhone:
		return r.Phone
	case FieldLoginInfo:
		return r.LoginInfo
	default:
		return ""
	}
}

// Set assigns v to field f. Unknown fields are ignored.
func (r *Record) Set(f Field, v string) {
	switch f {
	case FieldSupplier:
		r.Supplier = v
	case FieldProduct:
		r.Product = v
	case FieldDetails:
		r.Details = v
	case FieldWebsite:
		r.Website = v
	case FieldPhone:
		r.Phone = v
	case FieldLoginInfo:
		r.LoginInfo = v
	}
}

// Values returns the field values in CanonicalOrder.
func (r Record) Values() []string {
	vals := make([]string, len(CanonicalOrder))
	for i, f := range CanonicalOrder {
		vals[i] = r.Get(f)
	}
	return vals
}

// Trimmed returns a copy with every field trimmed of surrounding whitespace.
func (r Record) Trimmed() Record {
	out := Record{ID: r.ID}
	for _, f := range CanonicalOrder {
		out.Set(f, strings.TrimSpace(r.Get(f)))
	}
	return out
}

// HasRequired reports whether supplier and product are both non-empty.
func (r Record) HasRequired() bool {
	return r.Supplier != "" && r.Product != ""
}

// MissingRequired returns the required fields that are empty.
func (r Record) MissingRequired() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if r.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
