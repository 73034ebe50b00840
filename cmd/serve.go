package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/example/nodeplugin/internal/manager"
	"github.com/example/nodeplugin/internal/registry"
	"github.com/example/nodeplugin/pkg/logger"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plugin registry",
		Long: `Start every enabled plugin of the configuration, watch their health and
accept plugin registrations over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewLogger("serve")
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			pluginManager := manager.NewPluginManager(Config)
			defer pluginManager.StopAll()
			if err := pluginManager.StartAll(); err != nil {
				log.Warnw("some plugins failed to start", "err", err)
			}

			return registry.NewServer(pluginManager).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "listen", ":8080", "registry listen address")
	return cmd
}
