package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Room owns its bookings and is the only place overlap is decided.
// Version is managed by the store that persists the room and is used to
// reject saves made against a stale copy.
type Room struct {
	ID       string
	Name     string
	Capacity int
	Version  int64

	bookings []*Booking
}

func NewRoom(id, name string, capacity int) *Room {
	return &Room{
		ID:       id,
		Name:     name,
		Capacity: capacity,
	}
}

// RestoreRoom rebuilds a room from persisted state, rejecting data that
// breaks the room invariants.
func RestoreRoom(id, name string, capacity int, version int64, bookings []*Booking) (*Room, error) {
	room := &Room{
		ID:       id,
		Name:     name,
		Capacity: capacity,
		Version:  version,
		bookings: make([]*Booking, 0, len(bookings)),
	}
	for _, b := range bookings {
		if b.RoomID() != id {
			return nil, fmt.Errorf("%w: booking %s has room %s, want %s", ErrBookingRoomMismatch, b.ID(), b.RoomID(), id)
		}
		if !room.IsAvailable(b.StartTime(), b.EndTime()) {
			return nil, fmt.Errorf("room %s: stored booking %s overlaps another booking", id, b.ID())
		}
		room.bookings = append(room.bookings, b)
	}
	return room, nil
}

// IsAvailable reports whether no booking overlaps [start, end).
func (r *Room) IsAvailable(start, end time.Time) bool {
	for _, b := range r.bookings {
		if b.Overlaps(start, end) {
			return false
		}
	}
	return true
}

// AddBooking appends the booking. Availability must already have been
// checked by the caller.
func (r *Room) AddBooking(b *Booking) error {
	if b.RoomID() != r.ID {
		return ErrBookingRoomMismatch
	}
	r.bookings = append(r.bookings, b)
	return nil
}

func (r *Room) HasBooking(id string) bool {
	_, ok := r.GetBooking(id)
	return ok
}

func (r *Room) GetBooking(id string) (*Booking, bool) {
	for _, b := range r.bookings {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

func (r *Room) RemoveBooking(id string) error {
	for i, b := range r.bookings {
		if b.ID() == id {
			r.bookings = append(r.bookings[:i:i], r.bookings[i+1:]...)
			return nil
		}
	}
	return ErrBookingNotInRoom
}

// Bookings returns a copy of the room's bookings in insertion order.
func (r *Room) Bookings() []*Booking {
	out := make([]*Booking, len(r.bookings))
	copy(out, r.bookings)
	return out
}

// Clone returns an independent copy. Bookings are immutable and shared.
func (r *Room) Clone() *Room {
	c := *r
	c.bookings = r.Bookings()
	return &c
}

type RoomView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Capacity int           `json:"capacity"`
	Bookings []BookingView `json:"bookings"`
}

func (r *Room) MarshalJSON() ([]byte, error) {
	view := RoomView{
		ID:       r.ID,
		Name:     r.Name,
		Capacity: r.Capacity,
		Bookings: make([]BookingView, 0, len(r.bookings)),
	}
	for _, b := range r.bookings {
		view.Bookings = append(view.Bookings, b.View())
	}
	return json.Marshal(view)
}
