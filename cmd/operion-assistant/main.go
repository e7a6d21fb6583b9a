package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "operion-assistant",
		Usage:                 "Build and run automations from a conversation",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			RunCommand(),
			ChatCommand(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
