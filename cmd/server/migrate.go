package main

import (
	"github.com/rpattn/klinik/internal/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if err := db.MigrateUp(cfg.Database); err != nil {
				return err
			}
			logger.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if err := db.MigrateDown(cfg.Database, steps); err != nil {
				return err
			}
			logger.Info().Int("steps", steps).Msg("migrations rolled back")
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "number of migrations to roll back")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}
