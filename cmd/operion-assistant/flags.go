package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dukex/operion-assistant/pkg/cmd"
	"github.com/dukex/operion-assistant/pkg/engine"
	"github.com/dukex/operion-assistant/pkg/llm"
	"github.com/dukex/operion-assistant/pkg/log"
	"github.com/dukex/operion-assistant/pkg/nodes/emailsend"
	"github.com/dukex/operion-assistant/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

const serviceName = "operion-assistant"

func assistantFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Session store URL (memory://, file path, postgres://, redis://)",
			Value:   "./data",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Usage:   "Expire idle sessions after this long (redis only, 0 keeps them forever)",
			Sources: cli.EnvVars("SESSION_TTL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (none, gochannel, kafka)",
			Value:   "none",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma separated Kafka brokers",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			Usage:   "OpenAI API key; heuristics only when empty",
			Sources: cli.EnvVars("OPENAI_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "openai-base-url",
			Usage:   "OpenAI compatible API base URL",
			Sources: cli.EnvVars("OPENAI_BASE_URL"),
		},
		&cli.StringFlag{
			Name:    "openai-model",
			Usage:   "Chat model used for classification, extraction and replies",
			Value:   llm.DefaultModel,
			Sources: cli.EnvVars("OPENAI_MODEL"),
		},
		&cli.DurationFlag{
			Name:    "classifier-timeout",
			Usage:   "Budget for the intent classification LLM call",
			Value:   5 * time.Second,
			Sources: cli.EnvVars("CLASSIFIER_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "extractor-timeout",
			Usage:   "Budget for the parameter extraction LLM call",
			Value:   5 * time.Second,
			Sources: cli.EnvVars("EXTRACTOR_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "executor-timeout",
			Usage:   "Budget for running a confirmed automation",
			Value:   engine.DefaultConfig().ExecutorTimeout,
			Sources: cli.EnvVars("EXECUTOR_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "http-timeout",
			Usage:   "Timeout of a single HTTP request node call",
			Value:   30 * time.Second,
			Sources: cli.EnvVars("HTTP_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:    "max-clarifications",
			Usage:   "How often a missing parameter is asked for before giving up",
			Value:   5,
			Sources: cli.EnvVars("MAX_CLARIFICATIONS"),
		},
		&cli.IntFlag{
			Name:    "history-turns",
			Usage:   "Number of recent turns given to the classifier",
			Value:   engine.DefaultConfig().HistoryTurns,
			Sources: cli.EnvVars("HISTORY_TURNS"),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host; email nodes fail when empty",
			Sources: cli.EnvVars("SMTP_HOST"),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Usage:   "SMTP server port",
			Value:   587,
			Sources: cli.EnvVars("SMTP_PORT"),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.EnvVars("SMTP_USERNAME"),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.EnvVars("SMTP_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Default sender address",
			Sources: cli.EnvVars("SMTP_FROM"),
		},
		&cli.StringFlag{
			Name:    "smtp-tls",
			Usage:   "SMTP TLS policy (opportunistic, mandatory, none)",
			Value:   "opportunistic",
			Sources: cli.EnvVars("SMTP_TLS"),
		},
		&cli.BoolFlag{
			Name:    "otel-enabled",
			Usage:   "Export traces over OTLP/HTTP",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
	}
}

func setupLogging(command *cli.Command) {
	log.SetupWithWriter(os.Stderr, command.String("log-level"), command.String("log-format"))
}

func optionsFromCommand(command *cli.Command) cmd.Options {
	return cmd.Options{
		DatabaseURL:  command.String("database-url"),
		SessionTTL:   command.Duration("session-ttl"),
		EventBus:     command.String("event-bus"),
		KafkaBrokers: command.String("kafka-brokers"),
		OpenAI: llm.OpenAIConfig{
			APIKey:  command.String("openai-api-key"),
			BaseURL: command.String("openai-base-url"),
			Model:   command.String("openai-model"),
		},
		ClassifierTimeout: command.Duration("classifier-timeout"),
		ExtractorTimeout:  command.Duration("extractor-timeout"),
		SMTP: emailsend.SMTPConfig{
			Host:     command.String("smtp-host"),
			Port:     command.Int("smtp-port"),
			Username: command.String("smtp-username"),
			Password: command.String("smtp-password"),
			From:     command.String("smtp-from"),
			TLS:      command.String("smtp-tls"),
		},
		HTTPTimeout:       command.Duration("http-timeout"),
		MaxClarifications: command.Int("max-clarifications"),
		Engine: engine.Config{
			HistoryTurns:    command.Int("history-turns"),
			ExecutorTimeout: command.Duration("executor-timeout"),
			ReplyTimeout:    command.Duration("classifier-timeout"),
		},
	}
}

// newAssistant builds the assistant from flags, exporting traces when otel-enabled is set.
func newAssistant(ctx context.Context, command *cli.Command, logger *slog.Logger) (*cmd.Assistant, error) {
	opts := optionsFromCommand(command)

	if command.Bool("otel-enabled") {
		tracer, err := otelhelper.NewTracer(ctx, serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}

		opts.Tracer = tracer
	}

	return cmd.NewAssistant(ctx, logger, opts)
}
