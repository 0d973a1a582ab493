package commands

import (
	"fmt"
	"os"

	"stackit.dev/forum/internal/config"
	"stackit.dev/forum/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var dbURL string

var rootCmd = &cobra.Command{
	Use:   "stackitctl",
	Short: "Operator tasks for a StackIt deployment",
	Long: `stackitctl runs maintenance tasks against the StackIt database.

Configuration is read from the environment (and .env) the same way the
server does. --db overrides DATABASE_URL.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to DATABASE_URL / DB_*)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
