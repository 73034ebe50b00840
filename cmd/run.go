package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/example/nodeplugin/internal/app"
	"github.com/spf13/cobra"
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [plugin-kind] [--param value ...]",
		Short: "Run a specific plugin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]

			// Check for a help flag in the arguments
			for _, arg := range args[1:] {
				if arg == "--help" || arg == "-h" {
					return app.ShowPluginInfo(cmd.Context(), cmd.OutOrStdout(), Config, kind)
				}
			}

			pluginParams := app.ParsePluginFlags(args[1:])

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			_, err := app.ExecutePlugin(ctx, cmd.OutOrStdout(), Config, kind, pluginParams)
			return err
		},
	}
	// Stop parsing flags after the first non-flag argument (the plugin kind)
	cmd.Flags().SetInterspersed(false)
	return cmd
}
