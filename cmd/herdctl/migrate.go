package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/herdbook/internal/repository/sqlstore"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, cfg, err := openStore(ctx, *envFile)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Migrated %s store (%d record types)\n", cfg.Store.Driver, len(sqlstore.AllModels()))
			if !store.Atomic() {
				fmt.Fprintln(out, "Warning: store is not atomic; multi-record writes may partially complete")
			}
			return nil
		},
	}
}
