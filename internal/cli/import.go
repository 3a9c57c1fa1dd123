package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/JonMunkholm/supplierdb/internal/store"
	"github.com/spf13/cobra"
)

// openStore connects to the database. Tests replace it.
var openStore = func(ctx context.Context, url string, migrate bool) (store.Store, error) {
	if url == "" {
		return nil, errors.New("database URL required: set --database-url or DATABASE_URL")
	}
	pg, err := store.Open(ctx, url, store.PoolOptions{MaxConns: 2})
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
	}
	return pg, nil
}

func newImportCmd() *cobra.Command {
	var (
		in      inputFlags
		dataset string
		dbURL   string
		migrate bool
		yes     bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace a dataset's records with the standardized contents of FILE",
		Long: `import standardizes FILE and writes the result to the named dataset,
creating it when it does not exist. Replacing an existing dataset's records
requires --yes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			choices, err := in.choices()
			if err != nil {
				return err
			}

			st, err := openStore(ctx, dbURL, migrate)
			if err != nil {
				return err
			}
			defer st.Close()
			svc := core.NewService(st, core.Options{})

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			size := int64(-1)
			if info, err := f.Stat(); err == nil {
				size = info.Size()
			}

			sess, err := svc.BeginImportSheet(ctx, filepath.Base(path), in.sheet, f, size)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			override, err := mapping.ParseOverride(choices, sess.Columns)
			if err != nil {
				return err
			}

			res, err := svc.CommitImport(ctx, sess.ID, core.CommitRequest{
				Mode:     core.ModeNew,
				NewName:  dataset,
				Override: override,
				Confirm:  yes,
			})
			if errors.Is(err, core.ErrConfirmationRequired) {
				return fmt.Errorf("%w; pass --yes to replace its records", err)
			}
			if err != nil {
				return err
			}

			for _, msg := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
			}
			verb := "replaced"
			if res.Created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s dataset %q (id %d): %d records written\n",
				verb, res.Dataset.Name, res.Dataset.ID, res.Written)
			return nil
		},
	}
	in.register(cmd, true)
	cmd.Flags().StringVarP(&dataset, "dataset", "d", envOr("DEFAULT_DATASET_NAME", core.DefaultDatasetName), "Target dataset name")
	cmd.Flags().StringVar(&dbURL, "database-url", envOr("DATABASE_URL", os.Getenv("DB_URL")), "PostgreSQL connection string")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Create missing tables before importing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace an existing dataset without asking")
	return cmd
}
