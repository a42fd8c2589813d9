// Package main provides the match engine CLI entrypoint.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/faqdesk-ai/match-engine/internal/config"
	"github.com/faqdesk-ai/match-engine/internal/observability"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "match-engine-cli",
	Short: "Match engine CLI for tenant administration and FAQ matching",
	Long: `Match engine CLI provides commands for managing FAQ chatbot tenants.

Use this tool to:
- Apply database migrations
- Seed a demo tenant with a realistic FAQ set
- Chat against a tenant's FAQ set from the terminal
- Evaluate a query file against a tenant's FAQ set
- Run a no-database demo of the matching pipeline

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}
		logLevel := cfg.Observability.LogLevel
		if !verbose {
			logLevel = "warn"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       logLevel,
			Format:      logFormat,
			ServiceName: "match-engine-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase opens the configured database connection.
func openDatabase() (*sql.DB, error) {
	db, err := sql.Open(cfg.DriverName(), cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		db.SetMaxOpenConns(cfg.Database.SQLite.MaxOpenConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				fmt.Printf(`{"version":%q}`+"\n", Version)
				return
			}
			fmt.Printf("match-engine-cli %s\n", Version)
		},
	}
}
