package cmd

import (
	"github.com/example/nodeplugin/internal/app"
	"github.com/spf13/cobra"
)

func NewStopCmd() *cobra.Command {
	var runID, reason string
	cmd := &cobra.Command{
		Use:   "stop [plugin-kind]",
		Short: "Stop a run of a plugin",
		Long:  `Stop a run of a plugin. Without --run-id the plugin's only run is stopped.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.StopRun(cmd.Context(), cmd.OutOrStdout(), Config, args[0], runID, reason)
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run to stop")
	cmd.Flags().StringVar(&reason, "reason", "stopped from the command line", "reason reported to the plugin")
	return cmd
}
