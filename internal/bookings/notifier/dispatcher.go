package notifier

import (
	"context"
	"fmt"
	"roombook/pkg/kafka"
	"roombook/pkg/logger"
)

// Dispatcher consumes confirmation events and hands them to the delivery
// channel. Malformed events are permanent failures and go to the DLQ.
type Dispatcher struct {
	target Notifier
	log    *logger.Logger
}

func NewDispatcher(target Notifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{target: target, log: log}
}

func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var event Event
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("deserialization failed", err).
			WithDetail("event_id", msg.GetEventID())
	}

	booking, err := event.Booking()
	if err != nil {
		return kafka.NewPermanentError("invalid booking in event", err).
			WithDetail("booking_id", event.BookingID)
	}

	switch eventType := msg.GetEventType(); eventType {
	case EventBookingConfirmed:
		err = d.target.SendBookingConfirmation(ctx, booking)
	case EventBookingCancelled:
		err = d.target.SendCancellationConfirmation(ctx, booking)
	default:
		return kafka.NewPermanentError(fmt.Sprintf("unknown event type %q", eventType), kafka.ErrInvalidMessage)
	}
	if err != nil {
		d.log.Warn("Confirmation delivery failed",
			"event_id", msg.GetEventID(),
			"booking_id", booking.ID(),
			"error", err,
		)
		return kafka.NewTransientError("confirmation delivery failed", err)
	}
	return nil
}
