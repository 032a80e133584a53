package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2026, 1, 19, 14, 0, 0, 0, time.UTC)
	end   = start.Add(time.Hour)
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RoomsClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRoomsClient(srv.URL)
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestRoomsClient_Book(t *testing.T) {
	var gotKey string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/rooms/id/R1/bookings", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeBody(w, http.StatusCreated, `{"data":{"booked":true,"booking":{"id":"b1","room_id":"R1","start_time":"2026-01-19T14:00:00Z","end_time":"2026-01-19T15:00:00Z"}}}`)
	})

	res, err := c.Book(context.Background(), "R1", start, end, "k1")
	require.NoError(t, err)
	assert.True(t, res.Booked)
	require.NotNil(t, res.Booking)
	assert.Equal(t, "b1", res.Booking.ID)
	assert.Equal(t, "k1", gotKey)
	assert.Equal(t, "2026-01-19T14:00:00Z", gotBody["start_time"])
}

func TestRoomsClient_BookRefusedVersusConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusConflict, `{"data":{"booked":false}}`)
	})
	res, err := c.Book(context.Background(), "R1", start, end, "")
	require.NoError(t, err)
	assert.False(t, res.Booked)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusConflict, `{"error":"CONFLICT","message":"Room was modified concurrently, please try again","code":"CONFLICT"}`)
	})
	_, err = c.Book(context.Background(), "R1", start, end, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Room was modified concurrently, please try again", apiErr.Message)
}

func TestRoomsClient_Cancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/v1/bookings/id/b1" {
			writeBody(w, http.StatusOK, `{"data":{"cancelled":true}}`)
			return
		}
		writeBody(w, http.StatusNotFound, `{"data":{"cancelled":false}}`)
	})

	ok, err := c.Cancel(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Cancel(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoomsClient_AvailableAndGetRoom(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/rooms/available":
			assert.Equal(t, "2026-01-19T14:00:00Z", r.URL.Query().Get("start_time"))
			writeBody(w, http.StatusOK, `{"data":[{"id":"R2","name":"Borealis","capacity":4,"bookings":[]}],"total_count":1}`)
		case "/api/v1/rooms/id/R2":
			writeBody(w, http.StatusOK, `{"data":{"id":"R2","name":"Borealis","capacity":4,"bookings":[]}}`)
		default:
			writeBody(w, http.StatusNotFound, `{"error":"NOT_FOUND","message":"room does not exist","code":"NOT_FOUND"}`)
		}
	})

	rooms, err := c.Available(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "R2", rooms[0].ID)

	room, err := c.GetRoom(context.Background(), "R2")
	require.NoError(t, err)
	assert.Equal(t, 4, room.Capacity)

	_, err = c.GetRoom(context.Background(), "R9")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "room does not exist", apiErr.Message)
}

func TestHttpClient_WaitForHealthy(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"status":"ok"}`)
	})
	assert.NoError(t, c.WaitForHealthy(context.Background(), time.Second))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusServiceUnavailable, `{}`)
	})
	assert.Error(t, down.WaitForHealthy(context.Background(), 50*time.Millisecond))
}
