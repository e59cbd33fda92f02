// Package cli implements inventoryctl, the operator tool for the inventory
// database and its export files.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Verbose bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "inventoryctl",
		Short:         "Operate the supermarket inventory",
		Long:          "Apply migrations, regenerate the datos.* export files and manage accounts without the HTTP service.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.EnvFile, cmd.Flags().Changed("env-file"))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", defaultEnvFile, "file with environment variables to load")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewAccountsCommand(opts))

	return cmd
}

// loadEnvFile loads path without overriding variables that are already set.
// A missing default file is fine; a missing file the user named is not.
func loadEnvFile(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func newLogger(cmd *cobra.Command, opts *RootOptions) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openDatabase migrates and opens the configured database.
func openDatabase(ctx context.Context) (*sql.DB, config.Database, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, config.Database{}, err
	}
	if err := database.Migrate(cfg.Driver, cfg.URL, cfg.MigrationsPath); err != nil {
		return nil, config.Database{}, err
	}
	db, err := database.Open(ctx, cfg.Driver, cfg.URL, cfg.Pool)
	if err != nil {
		return nil, config.Database{}, err
	}
	return db, cfg, nil
}
