package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/SurakshaKumari/gt-3D-backend/internal/config"
	"github.com/SurakshaKumari/gt-3D-backend/internal/database"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(*configPath, func(m *database.Migrator) error {
					return m.Up()
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(*configPath, func(m *database.Migrator) error {
					return m.Down()
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(*configPath, func(m *database.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
	)

	return cmd
}

func withMigrator(configPath string, fn func(*database.Migrator) error) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need database.driver %q, got %q", config.DriverPostgres, cfg.Database.Driver)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	m, err := database.NewMigrator(database.BuildConnString(cfg.Database), logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}
