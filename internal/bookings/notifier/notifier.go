// Package notifier delivers booking and cancellation confirmations. Delivery
// is best effort: callers log and drop any error these return.
package notifier

import (
	"context"
	"errors"
	"roombook/pkg/model"
	"time"
)

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, booking *model.Booking) error
	SendCancellationConfirmation(ctx context.Context, booking *model.Booking) error
}

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// Event is the wire payload published for every confirmation.
type Event struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func NewEvent(b *model.Booking) Event {
	return Event{
		BookingID: b.ID(),
		RoomID:    b.RoomID(),
		StartTime: b.StartTime(),
		EndTime:   b.EndTime(),
	}
}

// Booking rebuilds the booking the event describes.
func (e Event) Booking() (*model.Booking, error) {
	return model.NewBooking(e.BookingID, e.RoomID, e.StartTime, e.EndTime, time.Time{})
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) SendBookingConfirmation(ctx context.Context, booking *model.Booking) error {
	var errs []error
	for _, n := range m {
		if err := n.SendBookingConfirmation(ctx, booking); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SendCancellationConfirmation(ctx context.Context, booking *model.Booking) error {
	var errs []error
	for _, n := range m {
		if err := n.SendCancellationConfirmation(ctx, booking); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
