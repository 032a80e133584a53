package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func mustBooking(t *testing.T, id, roomID string, start, end time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(id, roomID, start, end, day)
	require.NoError(t, err)
	return b
}

func TestNewBooking_RejectsEmptyOrInvertedWindow(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{name: "end equals start", start: at(13), end: at(13)},
		{name: "end before start", start: at(14), end: at(13)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBooking("b1", "R1", tt.start, tt.end, day)
			assert.ErrorIs(t, err, ErrInvalidBookingWindow)
			assert.Nil(t, b)
		})
	}
}

func TestRoom_IsAvailable(t *testing.T) {
	room := NewRoom("R1", "Aurora", 8)
	require.NoError(t, room.AddBooking(mustBooking(t, "b1", "R1", at(13), at(14))))

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		available bool
	}{
		{name: "exact overlap", start: at(13), end: at(14), available: false},
		{name: "contained", start: at(13).Add(15 * time.Minute), end: at(13).Add(45 * time.Minute), available: false},
		{name: "containing", start: at(12), end: at(15), available: false},
		{name: "overlaps start", start: at(12), end: at(13).Add(time.Minute), available: false},
		{name: "overlaps end", start: at(14).Add(-time.Minute), end: at(15), available: false},
		{name: "touching after", start: at(14), end: at(15), available: true},
		{name: "touching before", start: at(12), end: at(13), available: true},
		{name: "disjoint", start: at(8), end: at(9), available: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.available, room.IsAvailable(tt.start, tt.end))
		})
	}
}

func TestRoom_EmptyRoomIsAlwaysAvailable(t *testing.T) {
	room := NewRoom("R1", "Aurora", 8)
	assert.True(t, room.IsAvailable(at(0), at(23)))
}

func TestRoom_AddBookingRejectsForeignRoom(t *testing.T) {
	room := NewRoom("R1", "Aurora", 8)
	err := room.AddBooking(mustBooking(t, "b1", "R2", at(13), at(14)))
	assert.ErrorIs(t, err, ErrBookingRoomMismatch)
	assert.Empty(t, room.Bookings())
}

func TestRoom_LookupAndRemove(t *testing.T) {
	room := NewRoom("R1", "Aurora", 8)
	first := mustBooking(t, "b1", "R1", at(9), at(10))
	second := mustBooking(t, "b2", "R1", at(10), at(11))
	require.NoError(t, room.AddBooking(first))
	require.NoError(t, room.AddBooking(second))

	assert.True(t, room.HasBooking("b1"))
	got, ok := room.GetBooking("b2")
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = room.GetBooking("missing")
	assert.False(t, ok)

	require.NoError(t, room.RemoveBooking("b1"))
	assert.False(t, room.HasBooking("b1"))
	assert.True(t, room.IsAvailable(at(9), at(10)))
	assert.Len(t, room.Bookings(), 1)

	assert.ErrorIs(t, room.RemoveBooking("b1"), ErrBookingNotInRoom)
}

func TestRoom_CloneIsIndependent(t *testing.T) {
	room := NewRoom("R1", "Aurora", 8)
	require.NoError(t, room.AddBooking(mustBooking(t, "b1", "R1", at(9), at(10))))

	clone := room.Clone()
	require.NoError(t, clone.AddBooking(mustBooking(t, "b2", "R1", at(11), at(12))))
	require.NoError(t, clone.RemoveBooking("b1"))

	assert.True(t, room.HasBooking("b1"))
	assert.False(t, room.HasBooking("b2"))
	assert.Len(t, room.Bookings(), 1)
}

func TestRestoreRoom_ValidatesInvariants(t *testing.T) {
	ok := []*Booking{
		mustBooking(t, "b1", "R1", at(9), at(10)),
		mustBooking(t, "b2", "R1", at(10), at(11)),
	}
	room, err := RestoreRoom("R1", "Aurora", 8, 3, ok)
	require.NoError(t, err)
	assert.Equal(t, int64(3), room.Version)
	assert.Len(t, room.Bookings(), 2)

	_, err = RestoreRoom("R1", "Aurora", 8, 0, []*Booking{mustBooking(t, "b1", "R2", at(9), at(10))})
	assert.ErrorIs(t, err, ErrBookingRoomMismatch)

	_, err = RestoreRoom("R1", "Aurora", 8, 0, []*Booking{
		mustBooking(t, "b1", "R1", at(9), at(11)),
		mustBooking(t, "b2", "R1", at(10), at(12)),
	})
	assert.Error(t, err)
}

func TestRoom_MarshalJSON(t *testing.T) {
	room := NewRoom("R1", "Aurora", 8)
	require.NoError(t, room.AddBooking(mustBooking(t, "b1", "R1", at(13), at(14))))

	data, err := json.Marshal(room)
	require.NoError(t, err)

	var decoded RoomView
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "R1", decoded.ID)
	assert.Equal(t, "Aurora", decoded.Name)
	require.Len(t, decoded.Bookings, 1)
	assert.Equal(t, "b1", decoded.Bookings[0].ID)
	assert.True(t, decoded.Bookings[0].StartTime.Equal(at(13)))
}

func TestBooking_MarshalJSONOmitsZeroCreatedAt(t *testing.T) {
	b, err := NewBooking("b1", "R1", at(13), at(14), time.Time{})
	require.NoError(t, err)

	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "created_at")
	assert.Equal(t, "b1", fields["id"])

	raw, err = json.Marshal(mustBooking(t, "b2", "R1", at(13), at(14)))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"created_at":"2026-01-19T00:00:00Z"`)
}
