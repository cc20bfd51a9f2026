package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clemsytoff/tradesarace/internal/config"
	"github.com/clemsytoff/tradesarace/internal/database"
	"github.com/clemsytoff/tradesarace/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrationURL()
		if err != nil {
			return err
		}
		return database.MigrateUp(url, logging.New(logging.Options{Level: "info", Text: true}))
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default one step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}
		url, err := migrationURL()
		if err != nil {
			return err
		}
		return database.MigrateDown(url, steps, logging.New(logging.Options{Level: "info", Text: true}))
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrationURL()
		if err != nil {
			return err
		}
		version, dirty, applied, err := database.Status(url, logging.Discard())
		if err != nil {
			return err
		}
		if !applied {
			cmd.Println("no migrations applied")
			return nil
		}
		cmd.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func migrationURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return "", errors.New("DATABASE_URL must be set to run migrations")
	}
	return cfg.DatabaseURL, nil
}
