package model

import (
	"encoding/json"
	"time"
)

// Booking is an immutable reservation of the half-open window [start, end)
// on a single room.
type Booking struct {
	id        string
	roomID    string
	startTime time.Time
	endTime   time.Time
	createdAt time.Time
}

func NewBooking(id, roomID string, start, end, createdAt time.Time) (*Booking, error) {
	if !end.After(start) {
		return nil, ErrInvalidBookingWindow
	}
	return &Booking{
		id:        id,
		roomID:    roomID,
		startTime: start,
		endTime:   end,
		createdAt: createdAt,
	}, nil
}

func (b *Booking) ID() string           { return b.id }
func (b *Booking) RoomID() string       { return b.roomID }
func (b *Booking) StartTime() time.Time { return b.startTime }
func (b *Booking) EndTime() time.Time   { return b.endTime }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// Overlaps reports whether the booking intersects [start, end).
// Windows that only touch at an edge do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.startTime.Before(end) && start.Before(b.endTime)
}

type BookingView struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func (b *Booking) View() BookingView {
	return BookingView{
		ID:        b.id,
		RoomID:    b.roomID,
		StartTime: b.startTime,
		EndTime:   b.endTime,
		CreatedAt: b.createdAt,
	}
}

func (b *Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.View())
}
