package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/export"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		in        inputFlags
		out       string
		sheetName string
	)
	cmd := &cobra.Command{
		Use:   "convert FILE -o OUT.xlsx|OUT.csv",
		Short: "Write the standardized records to a new spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			if ext == "" {
				return fmt.Errorf("output %q: %w", out, export.ErrUnknownFormat)
			}
			format, err := export.ParseFormat(ext)
			if err != nil {
				return fmt.Errorf("output %q: %w", out, err)
			}
			res, err := in.standardize(args[0])
			if err != nil {
				return err
			}
			for _, msg := range core.Warnings(res) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Write(f, format, sheetName, res.Records, false); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(res.Records), out)
			return nil
		},
	}
	in.register(cmd, true)
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file; the extension selects xlsx or csv")
	cmd.Flags().StringVar(&sheetName, "sheet-name", export.DefaultSheet, "Worksheet name for xlsx output")
	cmd.MarkFlagRequired("output")
	return cmd
}
