package cli

import (
	"fmt"

	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/spf13/cobra"
)

type fieldMapping struct {
	Field    schema.Field `json:"field" yaml:"field"`
	Label    string       `json:"label" yaml:"label"`
	Column   string       `json:"column" yaml:"column"`
	Required bool         `json:"required" yaml:"required"`
}

type inspectReport struct {
	File       string         `json:"file" yaml:"file"`
	Rows       int            `json:"rows" yaml:"rows"`
	Columns    []string       `json:"columns" yaml:"columns"`
	Collisions []string       `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Mapping    []fieldMapping `json:"mapping" yaml:"mapping"`
	Missing    []schema.Field `json:"missing,omitempty" yaml:"missing,omitempty"`
}

func mappingRows(m mapping.Mapping) []fieldMapping {
	out := make([]fieldMapping, 0, len(schema.SupplierFieldSpecs))
	for _, spec := range schema.SupplierFieldSpecs {
		col := m.Get(spec.Field)
		if col == "" {
			col = mapping.NotMapped
		}
		out = append(out, fieldMapping{Field: spec.Field, Label: spec.Label, Column: col, Required: spec.Required})
	}
	return out
}

func newInspectCmd() *cobra.Command {
	var (
		in     inputFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the detected columns and the inferred field mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(output); err != nil {
				return err
			}
			inf, err := in.infer(args[0])
			if err != nil {
				return err
			}
			report := inspectReport{
				File:       args[0],
				Rows:       inf.Table.Len(),
				Columns:    inf.Table.Columns,
				Collisions: inf.Collisions,
				Mapping:    mappingRows(inf.Inferred),
				Missing:    inf.Inferred.Missing(),
			}
			if output != outputTable {
				return encode(cmd.OutOrStdout(), output, report)
			}
			return printInspect(cmd, report)
		},
	}
	in.register(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json, yaml")
	return cmd
}

func printInspect(cmd *cobra.Command, r inspectReport) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d rows, %d columns\n", r.File, r.Rows, len(r.Columns))
	for _, c := range r.Collisions {
		fmt.Fprintf(w, "warning: duplicate column %q ignored\n", c)
	}
	fmt.Fprintln(w)

	rows := make([][]string, len(r.Mapping))
	for i, m := range r.Mapping {
		req := ""
		if m.Required {
			req = "yes"
		}
		rows[i] = []string{m.Label, m.Column, req}
	}
	if err := renderTable(w, []string{"Field", "Column", "Required"}, rows); err != nil {
		return err
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "\n%s\n", (&mapping.MappingError{Missing: r.Missing}).Error())
	}
	return nil
}
