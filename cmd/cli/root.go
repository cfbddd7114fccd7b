package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var cfgFile string

// Execute собирает дерево команд и запускает его.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "castingcall",
		Short: "Audition contact form with an admin panel",
		Long: `CastingCall collects audition applications through a public form and
lets authenticated admins review submissions and manage admin accounts.

Without a subcommand it runs the web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables take precedence")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newBootstrapCmd())

	return cmd
}
