package cli

import (
	"fmt"

	"supermarket-inventory/internal/accounts"
	"supermarket-inventory/internal/accounts/password"
	"supermarket-inventory/internal/accounts/repository"
	"supermarket-inventory/internal/accounts/service"
	"supermarket-inventory/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func NewAccountsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(newAccountsCreateCommand(opts))
	return cmd
}

func newAccountsCreateCommand(opts *RootOptions) *cobra.Command {
	var in accounts.RegisterInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			iterations, err := config.LoadPasswordIterations()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, cfg, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			// Login outcomes are never recorded here; the vector is only
			// required by the service.
			logins := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "account_logins_total"}, []string{"outcome"})
			svc, err := service.New(repository.NewSQL(db, cfg.Driver), password.NewHasher(iterations), newLogger(cmd, opts), logins)
			if err != nil {
				return err
			}

			account, err := svc.Register(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created account %d <%s>\n", account.ID, account.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "login password")
	for _, name := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
