// Command herdctl administers a herdbook store: schema migration and the
// sign-up allow-list.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/backend"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "herdctl",
		Short:        "Herdbook administration",
		Long:         "herdctl migrates the herdbook store and manages who may sign up.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "path to the env file holding store settings")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMigrateCmd(&envFile))
	cmd.AddCommand(newAllowlistCmd(&envFile))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "herdctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// openStore loads the store settings and connects. The schema is always
// brought up to date so allow-list commands work on a fresh database.
func openStore(ctx context.Context, envFile string) (repository.Store, *config.Config, error) {
	cfg, err := config.LoadStore(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := backend.Open(ctx, cfg, true, zap.NewNop())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return store, cfg, nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
