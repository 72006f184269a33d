package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseBridge/internal/infrastructure/database/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateStatusCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			db := cliCtx.Config.Database
			if err := postgres.RunMigrations(db.DSN(), db.MigrationPath); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if steps < 1 {
				return fmt.Errorf("steps must be >= 1, got %d", steps)
			}
			db := cliCtx.Config.Database
			if err := postgres.RollbackMigration(db.DSN(), db.MigrationPath, steps); err != nil {
				return err
			}
			fmt.Printf("rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			db := cliCtx.Config.Database
			version, dirty, err := postgres.MigrationStatus(db.DSN(), db.MigrationPath)
			if err != nil {
				return err
			}
			return printResult(cliCtx, map[string]interface{}{
				"version": version,
				"dirty":   dirty,
			})
		},
	}
}
