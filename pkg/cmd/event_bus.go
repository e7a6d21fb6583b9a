package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-assistant/pkg/channels/gochannel"
	"github.com/dukex/operion-assistant/pkg/channels/kafka"
	"github.com/dukex/operion-assistant/pkg/eventbus"
)

// ErrUnsupportedEventBus indicates an unknown event bus provider.
var ErrUnsupportedEventBus = errors.New("unsupported event bus provider")

const eventBusServiceName = "operion-assistant"

// NewEventBus creates the lifecycle event bus. The "none" provider returns a nil bus:
// events are then not published at all.
func NewEventBus(provider string, brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "none":
		return nil, nil
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, kafka.ParseBrokers(brokers), eventBusServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEventBus, provider)
	}
}
