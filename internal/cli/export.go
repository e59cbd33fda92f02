package cli

import (
	"context"
	"fmt"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/products"
	"supermarket-inventory/internal/products/export"
	"supermarket-inventory/internal/products/repository"

	"github.com/spf13/cobra"
)

// NewExportCommand rewrites the export files from the store. Run it after the
// service reported an export warning.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Regenerate datos.txt, datos.json and datos.csv from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, cfg, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if dir == "" {
				dir = config.ExportDir()
			}
			repo := repository.NewSQL(db, cfg.Driver)
			exporter := export.New(dir, newLogger(cmd, opts), nil)

			var count int
			err = exporter.Refresh(ctx, func(ctx context.Context) ([]products.Product, error) {
				items, err := repo.List(ctx)
				count = len(items)
				return items, err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d products to %s\n", count, exporter.Dir())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "export directory (default $EXPORT_DIR or datos)")
	return cmd
}
