package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/config"
	"github.com/pageza/nutriplan/backend/internal/database"
	"github.com/pageza/nutriplan/backend/internal/logging"
)

var steps int

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the NutriPlan database schema",
	Long: `Apply or roll back the SQL migrations embedded in the binary.

The connection settings are read the same way the API reads them
(environment, .env overlay and Docker secrets). Only PostgreSQL is
supported; SQLite databases are auto-migrated on start.`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate, log *zap.Logger) error {
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			return printVersion(cmd, m)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if steps < 1 {
			return fmt.Errorf("--steps must be at least 1, got %d", steps)
		}
		return withMigrator(func(m *migrate.Migrate, log *zap.Logger) error {
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to roll back migrations: %w", err)
			}
			log.Info("rolled back migrations", zap.Int("steps", steps))
			return printVersion(cmd, m)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate, _ *zap.Logger) error {
			return printVersion(cmd, m)
		})
	},
}

func init() {
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func withMigrator(fn func(*migrate.Migrate, *zap.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.DBDriver != "postgres" {
		return fmt.Errorf("migrations need the postgres driver, got %q", cfg.DBDriver)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "nutriplan-migrate")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	m, err := database.NewMigrator(sqlDB)
	if err != nil {
		return err
	}
	return fn(m, logger)
}

func printVersion(cmd *cobra.Command, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		cmd.Println("no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	cmd.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
