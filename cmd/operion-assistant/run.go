package main

import (
	"context"

	"github.com/dukex/operion-assistant/pkg/cmd"
	"github.com/dukex/operion-assistant/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Start the assistant API",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
		}, assistantFlags()...),
		Action: func(ctx context.Context, command *cli.Command) error {
			setupLogging(command)

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Operion Assistant API")

			assistant, err := newAssistant(ctx, command, logger)
			if err != nil {
				return err
			}

			defer func() {
				err := assistant.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close assistant", "error", err)
				}
			}()

			if assistant.EventBus != nil {
				err = cmd.SubscribeAuditLog(ctx, assistant.EventBus, log.WithModule("audit"))
				if err != nil {
					return err
				}
			}

			api := NewAPI(logger, assistant)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}
}
