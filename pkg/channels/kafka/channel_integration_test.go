package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-assistant/pkg/channels/kafka"
	"github.com/dukex/operion-assistant/pkg/eventbus"
	"github.com/dukex/operion-assistant/pkg/events"
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestKafkaChannel_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	kafkaContainer, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_CREATE_TOPICS": "true",
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = kafkaContainer.Terminate(context.Background())
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)

	pub, sub, err := kafka.CreateChannel(watermill.NopLogger{}, brokers, "assistant-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	defer func() {
		_ = bus.Close()
	}()

	key := models.SessionKey{AgentID: "agent", SessionID: "session"}
	event := events.AutomationCancelled{
		BaseEvent: events.NewBaseEvent(events.AutomationCancelledEvent, key, "wf-1"),
		State:     models.DialogStateDone,
	}

	require.NoError(t, bus.Publish(ctx, event.Key(), event))

	received := make(chan *events.AutomationCancelled, 1)

	require.NoError(t, bus.Handle(events.AutomationCancelledEvent, func(_ context.Context, e any) error {
		received <- e.(*events.AutomationCancelled)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	select {
	case got := <-received:
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, models.DialogStateDone, got.State)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}
