package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/operion-assistant/pkg/assembler"
	"github.com/dukex/operion-assistant/pkg/classifier"
	"github.com/dukex/operion-assistant/pkg/dialog"
	"github.com/dukex/operion-assistant/pkg/engine"
	"github.com/dukex/operion-assistant/pkg/eventbus"
	"github.com/dukex/operion-assistant/pkg/extractor"
	"github.com/dukex/operion-assistant/pkg/llm"
	"github.com/dukex/operion-assistant/pkg/nodes/emailsend"
	"github.com/dukex/operion-assistant/pkg/nodes/openai"
	"github.com/dukex/operion-assistant/pkg/persistence"
	"github.com/dukex/operion-assistant/pkg/registry"
	"github.com/dukex/operion-assistant/pkg/services"
	"github.com/dukex/operion-assistant/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

// Options configures a complete assistant.
type Options struct {
	DatabaseURL       string               `validate:"required"`
	SessionTTL        time.Duration        `validate:"gte=0"`
	EventBus          string               `validate:"omitempty,oneof=none gochannel kafka"`
	KafkaBrokers      string               `validate:"required_if=EventBus kafka"`
	OpenAI            llm.OpenAIConfig     `validate:"-"`
	ClassifierTimeout time.Duration        `validate:"gte=0"`
	ExtractorTimeout  time.Duration        `validate:"gte=0"`
	SMTP              emailsend.SMTPConfig `validate:"-"`
	HTTPTimeout       time.Duration        `validate:"gte=0"`
	MaxClarifications int                  `validate:"gte=0"`
	Engine            engine.Config        `validate:"-"`
	Tracer            trace.Tracer         `validate:"-"`
}

// Assistant bundles the wired components of one running assistant.
type Assistant struct {
	Engine   *engine.Engine
	Registry *registry.Registry
	Store    persistence.Persistence
	EventBus eventbus.EventBus
	Session  *services.Session
}

// NewAssistant opens the session store and the event bus and wires every component. The
// LLM is optional: without an API key the assistant runs on heuristics only and cannot
// execute AI content nodes.
func NewAssistant(ctx context.Context, logger *slog.Logger, opts Options) (*Assistant, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid assistant options: %w", err)
	}

	if opts.OpenAI.APIKey != "" {
		err = validate.Struct(opts.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("invalid OpenAI options: %w", err)
		}
	}

	if opts.SMTP.Host != "" {
		err = validate.Struct(opts.SMTP)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP options: %w", err)
		}
	}

	var (
		completer llm.Completer
		chatter   openai.Chatter
	)

	if opts.OpenAI.APIKey != "" {
		client := llm.NewOpenAICompleter(opts.OpenAI, logger)
		completer = client
		chatter = client
	} else {
		logger.WarnContext(ctx, "No OpenAI API key configured, using heuristics only")
	}

	var sender emailsend.Sender
	if opts.SMTP.Host != "" {
		sender = emailsend.NewSMTPSender(opts.SMTP, logger)
	}

	reg, err := NewRegistry(logger, NodeOptions{
		HTTPClient:  &http.Client{Timeout: opts.HTTPTimeout},
		Chatter:     chatter,
		Sender:      sender,
		DefaultFrom: opts.SMTP.From,
	})
	if err != nil {
		return nil, err
	}

	store, err := NewPersistence(ctx, logger, opts.DatabaseURL, opts.SessionTTL)
	if err != nil {
		return nil, err
	}

	bus, err := NewEventBus(opts.EventBus, opts.KafkaBrokers, logger)
	if err != nil {
		return nil, errors.Join(err, store.Close(ctx))
	}

	var publisher eventbus.EventPublisher
	if bus != nil {
		publisher = bus
	}

	ext := extractor.NewExtractor(logger, completer, opts.ExtractorTimeout)

	eng, err := engine.NewEngine(logger, engine.Dependencies{
		Store:      store,
		Classifier: classifier.NewIntentClassifier(logger, completer, opts.ClassifierTimeout),
		Dialog:     dialog.NewDialog(logger, reg, ext, assembler.NewAssembler(logger, reg), opts.MaxClarifications),
		Executor:   workflow.NewExecutor(logger, reg, opts.Tracer),
		Replier:    completer,
		Publisher:  publisher,
		Tracer:     opts.Tracer,
	}, opts.Engine)
	if err != nil {
		return nil, errors.Join(err, closeAll(ctx, store, bus))
	}

	return &Assistant{
		Engine:   eng,
		Registry: reg,
		Store:    store,
		EventBus: bus,
		Session:  services.NewSession(eng, store, reg),
	}, nil
}

// Close releases the event bus and the session store.
func (a *Assistant) Close(ctx context.Context) error {
	return closeAll(ctx, a.Store, a.EventBus)
}

func closeAll(ctx context.Context, store persistence.Persistence, bus eventbus.EventBus) error {
	var errs []error

	if bus != nil {
		errs = append(errs, bus.Close())
	}

	errs = append(errs, store.Close(ctx))

	return errors.Join(errs...)
}
