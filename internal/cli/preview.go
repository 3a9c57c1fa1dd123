package cli

import (
	"fmt"

	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/schema"
	"github.com/spf13/cobra"
)

type previewReport struct {
	File        string          `json:"file" yaml:"file"`
	Mapping     []fieldMapping  `json:"mapping" yaml:"mapping"`
	InputRows   int             `json:"inputRows" yaml:"input_rows"`
	ValidRows   int             `json:"validRows" yaml:"valid_rows"`
	DroppedRows int             `json:"droppedRows" yaml:"dropped_rows"`
	Warnings    []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Records     []schema.Record `json:"records" yaml:"records"`
}

func newPreviewCmd() *cobra.Command {
	var (
		in     inputFlags
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Print the standardized records a file would produce",
		Example: `  supplierctl preview vendors.xlsx
  supplierctl preview vendors.csv --map supplier="Company" --limit 5 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(output); err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			res, err := in.standardize(args[0])
			if err != nil {
				return err
			}

			recs := res.Records
			if limit > 0 && len(recs) > limit {
				recs = recs[:limit]
			}
			report := previewReport{
				File:        args[0],
				Mapping:     mappingRows(res.Mapping),
				InputRows:   res.InputRows,
				ValidRows:   len(res.Records),
				DroppedRows: res.Dropped(),
				Warnings:    core.Warnings(res),
				Records:     recs,
			}
			if output != outputTable {
				return encode(cmd.OutOrStdout(), output, report)
			}
			return printPreview(cmd, report)
		},
	}
	in.register(cmd, true)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to print (0 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json, yaml")
	return cmd
}

func printPreview(cmd *cobra.Command, r previewReport) error {
	w := cmd.OutOrStdout()
	for _, msg := range r.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
	}

	rows := make([][]string, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = rec.Values()
	}
	if err := renderTable(w, schema.DisplayNames(), rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d rows are valid; showing %d\n", r.ValidRows, r.InputRows, len(r.Records))
	return err
}
