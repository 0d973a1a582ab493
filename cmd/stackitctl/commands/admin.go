package commands

import (
	"fmt"

	"stackit.dev/forum/internal/bootstrap"

	"github.com/spf13/cobra"
)

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <external_id>",
	Short: "Grant the ADMIN role to a user",
	Long: `Grant the ADMIN role to the user identified by their identity provider id.

The user must have signed in at least once so that a local record exists.

Examples:
  stackitctl promote-admin 104832765413497654321`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		user, err := bootstrap.PromoteAdmin(cmd.Context(), db, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.Username, user.ID, user.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteAdminCmd)
}
