package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/example/nodeplugin/internal/manager"
	"github.com/example/nodeplugin/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool

	// Config is the plugin registry loaded before every command runs.
	Config *manager.AppConfig
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "app",
		Short:        "A node plugin host",
		Long:         `A CLI application that manages and executes node plugins over gRPC.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetDebug(debug)

			var err error
			Config, err = manager.LoadConfig(cfgFile)
			if err != nil {
				// the registry server may start empty and learn plugins at runtime
				if cmd.Name() == "serve" && errors.Is(err, fs.ErrNotExist) {
					Config = &manager.AppConfig{}
					return nil
				}
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "plugins.yaml", "plugin registry file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.AddCommand(
		NewListCmd(),
		NewInfoCmd(),
		NewRunCmd(),
		NewHealthCmd(),
		NewStopCmd(),
		NewServeCmd(),
	)
	return root
}
