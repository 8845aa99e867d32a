package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"consultify/internal/backend"
	"consultify/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Open the configured database, applying every pending migration. The API
and worker do the same on start-up; this command lets deployments run it
as a separate step.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			be, cfg, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer closeBackend(be)

			if err := be.Store.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("database not reachable after migration: %w", err)
			}
			if cfg.Type == backend.MemoryBackend {
				fmt.Fprintln(cmd.OutOrStdout(), cli.WarningStyle.Render("memory backend has no schema to migrate"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.TitleStyle.Render(fmt.Sprintf("%s schema is up to date", cfg.Type)))
			return nil
		},
	}
}
