package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/schema"
)

// ErrColumnNotFound is wrapped by errors raised when a mapping names a column
// the table does not have.
var ErrColumnNotFound = errors.New("column not found")

// MappingError reports required fields that have no column.
type MappingError struct {
	Missing []schema.Field
}

func (e *MappingError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		labels[i] = schema.DisplayName(f)
	}
	return fmt.Sprintf("required mapping missing: %s must be mapped", strings.Join(labels, " and "))
}

// ColumnError reports a mapping that points at a non-existent column.
type ColumnError struct {
	Field  schema.Field
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s mapped to %q: %s", e.Field, e.Column, ErrColumnNotFound)
}

func (e *ColumnError) Unwrap() error {
	return ErrColumnNotFound
}
