package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dukex/operion-assistant/pkg/log"
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/services"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Talk to the assistant from the terminal",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "agent-id",
				Usage: "Agent the conversation belongs to",
				Value: "cli",
			},
			&cli.StringFlag{
				Name:  "session-id",
				Usage: "Session to resume; a new one is started when empty",
			},
			&cli.StringFlag{
				Name:  "agent-name",
				Usage: "Persona name used in conversational replies",
				Value: "Operion",
			},
			&cli.StringFlag{
				Name:  "agent-role",
				Usage: "Persona role used in conversational replies",
				Value: "automation assistant",
			},
		}, assistantFlags()...),
		Action: func(ctx context.Context, command *cli.Command) error {
			setupLogging(command)

			logger := log.WithModule("chat")

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

			sessionID := command.String("session-id")
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			template := models.Request{
				AgentID:   command.String("agent-id"),
				SessionID: sessionID,
				AgentContext: models.AgentContext{
					Name: command.String("agent-name"),
					Role: command.String("agent-role"),
				},
			}

			_, _ = fmt.Fprintf(os.Stdout, "Session %s. Type 'exit' to quit.\n", sessionID)

			return chat(ctx, assistant.Engine, template, os.Stdin, os.Stdout)
		},
	}
}

// chat feeds every non-empty input line to the processor and prints the reply, until
// the input ends, the user types exit or the context is cancelled.
func chat(ctx context.Context, processor services.Processor, template models.Request, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		_, _ = fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)

			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())

		switch {
		case text == "":
			continue
		case text == "exit" || text == "quit":
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		req := template
		req.UserText = text

		resp := processor.Process(ctx, req)

		_, err := fmt.Fprintln(out, resp.Text())
		if err != nil {
			return err
		}
	}
}
