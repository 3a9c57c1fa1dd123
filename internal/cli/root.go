// Package cli implements supplierctl, a command line front end for checking
// and converting supplier spreadsheets and loading them into the database.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/supplierdb/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the supplierctl command tree.
func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "supplierctl",
		Short: "Inspect, standardize and import supplier spreadsheets",
		Long: `supplierctl reads .xlsx, .csv and .tsv supplier lists, matches their
columns to the canonical fields (Supplier, Product, Details, Website, Phone,
Login Info) and previews, converts or imports the standardized records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newInspectCmd(),
		newPreviewCmd(),
		newConvertCmd(),
		newImportCmd(),
	)
	return root
}

// Execute runs the CLI with os.Args and returns the process exit code.
// A .env file in the working directory fills in unset variables first, so
// flag defaults such as --database-url can come from it.
func Execute(ctx context.Context, stderr io.Writer) int {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// envOr returns the environment value for key, or fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
