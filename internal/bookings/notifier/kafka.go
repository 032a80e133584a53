package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"roombook/pkg/kafka"
	"roombook/pkg/model"
	"time"
)

const eventSchemaVersion = "1"

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaNotifier publishes confirmation events keyed by room id so all events
// of one room land on the same partition in order.
type KafkaNotifier struct {
	publisher Publisher
	source    string
	timeout   time.Duration
}

func NewKafkaNotifier(publisher Publisher, source string, timeout time.Duration) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		source:    source,
		timeout:   timeout,
	}
}

func (n *KafkaNotifier) SendBookingConfirmation(ctx context.Context, booking *model.Booking) error {
	return n.publish(ctx, EventBookingConfirmed, booking)
}

func (n *KafkaNotifier) SendCancellationConfirmation(ctx context.Context, booking *model.Booking) error {
	return n.publish(ctx, EventBookingCancelled, booking)
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType string, booking *model.Booking) error {
	value, err := json.Marshal(NewEvent(booking))
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	msg := kafka.NewMessage().
		WithKey(booking.RoomID()).
		WithRawValue(value).
		WithEventType(eventType).
		WithSource(n.source).
		WithCorrelationID(booking.ID()).
		WithSchemaVersion(eventSchemaVersion).
		Build()

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event for booking %s: %w", eventType, booking.ID(), err)
	}
	return nil
}
