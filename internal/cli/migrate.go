package cli

import (
	"fmt"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/database"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			newLogger(cmd, opts).Debug("running migrations", "driver", cfg.Driver, "path", cfg.MigrationsPath)

			if err := database.Migrate(cfg.Driver, cfg.URL, cfg.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.Driver)
			return nil
		},
	}
}
