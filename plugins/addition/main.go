package main

import (
	"os"

	"github.com/example/nodeplugin/pkg/grpc"
)

func main() {
	if err := grpc.NewServeCommand(NewAdditionPlugin()).Execute(); err != nil {
		os.Exit(1)
	}
}
