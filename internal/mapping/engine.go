package mapping

import (
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/JonMunkholm/supplierdb/internal/table"
)

// Engine runs the full standardization pipeline against an alias table.
type Engine struct {
	Aliases schema.AliasTable
}

// NewEngine returns an Engine using the built-in alias table.
func NewEngine() *Engine {
	return &Engine{Aliases: schema.Aliases}
}

// Inference is the outcome of normalizing headers and resolving aliases,
// before any rows are read.
type Inference struct {
	Table      *table.Raw // Copy of the input with normalized headers
	Inferred   Mapping    // Mapping chosen from the alias table
	Collisions []string   // Normalized headers dropped as duplicates
}

// Options returns the selector choices for the normalized columns.
func (i *Inference) Options() []string {
	return Options(i.Table.Columns)
}

// Result is the outcome of a full run.
type Result struct {
	Inference
	Mapping   Mapping         // Effective mapping after any override
	Shared    []string        // Columns used by more than one field
	Records   []schema.Record // Standardized records
	InputRows int
}

// Dropped returns how many input rows were filtered out.
func (r *Result) Dropped() int {
	return r.InputRows - len(r.Records)
}

// Infer normalizes headers and resolves the alias table.
func (e *Engine) Infer(raw *table.Raw) *Inference {
	norm, collisions := NormalizeHeaders(raw)
	return &Inference{
		Table:      norm,
		Inferred:   ResolveWith(e.Aliases, norm.Columns),
		Collisions: collisions,
	}
}

// Run infers a mapping for raw, applies override on top of it and
// standardizes the rows. On a *MappingError or *ColumnError the returned
// Result still carries the inference and effective mapping, with no records.
func (e *Engine) Run(raw *table.Raw, override Mapping) (*Result, error) {
	return e.Apply(e.Infer(raw), override)
}

// Apply standardizes an existing inference. It lets callers infer once and
// preview several overrides.
func (e *Engine) Apply(inf *Inference, override Mapping) (*Result, error) {
	effective := inf.Inferred.With(override)
	res := &Result{
		Inference: *inf,
		Mapping:   effective,
		Shared:    effective.SharedColumns(),
		InputRows: inf.Table.Len(),
	}

	recs, err := Standardize(inf.Table, effective)
	if err != nil {
		return res, err
	}
	res.Records = Canonical(recs)
	return res, nil
}
