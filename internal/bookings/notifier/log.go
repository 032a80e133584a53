package notifier

import (
	"context"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"time"
)

// LogNotifier writes confirmations to the service log. It is the default
// channel when no broker is configured and the delivery step of the
// notifications worker.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendBookingConfirmation(ctx context.Context, booking *model.Booking) error {
	return n.send(ctx, "Booking confirmed", booking)
}

func (n *LogNotifier) SendCancellationConfirmation(ctx context.Context, booking *model.Booking) error {
	return n.send(ctx, "Booking cancelled", booking)
}

func (n *LogNotifier) send(ctx context.Context, msg string, b *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.InfoContext(ctx, msg,
		"booking_id", b.ID(),
		"room_id", b.RoomID(),
		"start_time", b.StartTime().Format(time.RFC3339),
		"end_time", b.EndTime().Format(time.RFC3339),
	)
	return nil
}
