package main

import (
	"os"

	"github.com/example/nodeplugin/cmd"
	"github.com/example/nodeplugin/pkg/logger"
)

func main() {
	defer logger.Sync()
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
