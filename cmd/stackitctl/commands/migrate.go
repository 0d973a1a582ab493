package commands

import (
	"fmt"

	"stackit.dev/forum/internal/bootstrap"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		if err := bootstrap.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var seedTagsCmd = &cobra.Command{
	Use:   "seed-tags",
	Short: "Insert the default tag catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		n, err := bootstrap.SeedTags(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("seed tags: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d default tags present\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedTagsCmd)
}
