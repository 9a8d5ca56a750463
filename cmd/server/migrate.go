package main

import (
	"fmt"

	"github.com/kiranshivaraju/crisisapi/internal/config"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := store.RunMigrations(cfg.Database.URL, dir); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", migrationsDir, "Directory holding the migration files")

	return cmd
}
