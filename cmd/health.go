package cmd

import (
	"context"
	"time"

	"github.com/example/nodeplugin/internal/app"
	"github.com/spf13/cobra"
)

func NewHealthCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health [plugin-kind]",
		Short: "Check the health of a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return app.CheckHealth(ctx, cmd.OutOrStdout(), Config, args[0])
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "health check timeout")
	return cmd
}
