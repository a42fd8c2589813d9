package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Migrate applies the schema migrations for the configured database
driver. Migrations are plain SQL files; the sqlite variants carry an
_sqlite suffix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, false)
			defer ui.Close()

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			files, err := migrationFiles(migrationsDir, cfg.Database.Driver)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no migrations found in %s", migrationsDir)
			}

			for _, file := range files {
				ui.Info("Applying %s", filepath.Base(file))
				script, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read migration %s: %w", file, err)
				}
				if _, err := db.ExecContext(cmd.Context(), string(script)); err != nil {
					return fmt.Errorf("apply migration %s: %w", file, err)
				}
			}

			ui.Success("Applied %d migration(s) on %s", len(files), cfg.Database.Driver)
			return nil
		},
	}

	cmd.Flags().StringVar(&migrationsDir, "dir", "db/migrations", "migrations directory")
	return cmd
}

// migrationFiles lists the migration scripts for a driver in name order.
func migrationFiles(dir, driver string) ([]string, error) {
	var pattern string
	if driver == "sqlite" {
		pattern = filepath.Join(dir, "*_sqlite.sql")
	} else {
		pattern = filepath.Join(dir, "*.sql")
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	if driver != "sqlite" {
		// The glob above also catches the sqlite variants; drop them.
		filtered := matches[:0]
		for _, m := range matches {
			if !strings.HasSuffix(filepath.Base(m), "_sqlite.sql") {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}
	return matches, nil
}
