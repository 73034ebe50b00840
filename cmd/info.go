package cmd

import (
	"github.com/example/nodeplugin/internal/app"
	"github.com/spf13/cobra"
)

func NewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [plugin-kind]",
		Short: "Show detailed information for a specific plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ShowPluginInfo(cmd.Context(), cmd.OutOrStdout(), Config, args[0])
		},
	}
}
