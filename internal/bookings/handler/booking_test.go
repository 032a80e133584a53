package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/validator"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 19, 13, 0, 0, 0, time.UTC)

// Mock service for testing
type mockBookingService struct {
	bookFunc      func(ctx context.Context, roomID string, start, end time.Time) (*model.Booking, error)
	cancelFunc    func(ctx context.Context, bookingID string) (bool, error)
	availableFunc func(ctx context.Context, start, end time.Time) ([]*model.Room, error)
	getRoomFunc   func(ctx context.Context, roomID string) (*model.Room, error)
	listRoomsFunc func(ctx context.Context) ([]*model.Room, error)
}

func (m *mockBookingService) Book(ctx context.Context, roomID string, start, end time.Time) (*model.Booking, error) {
	return m.bookFunc(ctx, roomID, start, end)
}

func (m *mockBookingService) BookRoom(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	b, err := m.Book(ctx, roomID, start, end)
	return b != nil, err
}

func (m *mockBookingService) CancelBooking(ctx context.Context, bookingID string) (bool, error) {
	return m.cancelFunc(ctx, bookingID)
}

func (m *mockBookingService) GetAvailableRooms(ctx context.Context, start, end time.Time) ([]*model.Room, error) {
	return m.availableFunc(ctx, start, end)
}

func (m *mockBookingService) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	return m.getRoomFunc(ctx, roomID)
}

func (m *mockBookingService) ListRooms(ctx context.Context) ([]*model.Room, error) {
	if m.listRoomsFunc != nil {
		return m.listRoomsFunc(ctx)
	}
	return []*model.Room{}, nil
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.Discard()
	router := httprouter.New()
	NewBookingHandler(svc, validator.NewBookingValidator(log), log).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const bookBody = `{"start_time":"2026-01-19T13:00:00Z","end_time":"2026-01-19T14:00:00Z"}`

func TestBook_Created(t *testing.T) {
	var gotRoom string
	var gotStart, gotEnd time.Time
	svc := &mockBookingService{
		bookFunc: func(_ context.Context, roomID string, s, e time.Time) (*model.Booking, error) {
			gotRoom, gotStart, gotEnd = roomID, s, e
			return model.NewBooking("b1", roomID, s, e, s.Add(-time.Hour))
		},
	}

	rec := serve(newRouter(svc), http.MethodPost, "/api/v1/rooms/id/R1/bookings", bookBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "R1", gotRoom)
	assert.True(t, gotStart.Equal(start))
	assert.True(t, gotEnd.Equal(start.Add(time.Hour)))

	var resp struct {
		Data struct {
			Booked  bool              `json:"booked"`
			Booking model.BookingView `json:"booking"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Booked)
	assert.Equal(t, "b1", resp.Data.Booking.ID)
	assert.Equal(t, "R1", resp.Data.Booking.RoomID)
}

func TestBook_RoomTaken(t *testing.T) {
	svc := &mockBookingService{
		bookFunc: func(context.Context, string, time.Time, time.Time) (*model.Booking, error) {
			return nil, nil
		},
	}

	rec := serve(newRouter(svc), http.MethodPost, "/api/v1/rooms/id/R1/bookings", bookBody)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"data":{"booked":false}}`, rec.Body.String())
}

func TestBook_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"malformed body", `{"start_time":`, nil, http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid request body"},
		{"bad timestamp", `{"start_time":"tomorrow","end_time":"2026-01-19T14:00:00Z"}`, nil, http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid request body"},
		{"missing end", `{"start_time":"2026-01-19T13:00:00Z"}`, nil, http.StatusBadRequest, apperrors.CodeInvalidInput, "valid start/end times and room id required"},
		{"past", bookBody, bookingserrors.ErrPastBooking, http.StatusBadRequest, apperrors.CodeInvalidInput, "cannot book a time in the past"},
		{"window", bookBody, bookingserrors.ErrInvalidWindow, http.StatusBadRequest, apperrors.CodeInvalidInput, "end time must be after start time"},
		{"unknown room", bookBody, bookingserrors.ErrRoomNotFound, http.StatusNotFound, apperrors.CodeNotFound, "room does not exist"},
		{"lock busy", bookBody, apperrors.Conflict("room is currently being booked by another request, please try again"), http.StatusConflict, apperrors.CodeConflict, "room is currently being booked by another request, please try again"},
		{"store down", bookBody, apperrors.Internal("Failed to save room", errors.New("mongo down")), http.StatusInternalServerError, apperrors.CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockBookingService{
				bookFunc: func(context.Context, string, time.Time, time.Time) (*model.Booking, error) {
					called = true
					return nil, tt.serviceErr
				},
			}

			rec := serve(newRouter(svc), http.MethodPost, "/api/v1/rooms/id/R1/bookings", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Equal(t, tt.serviceErr != nil, called)
		})
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name       string
		cancelled  bool
		err        error
		wantStatus int
		wantBody   string
	}{
		{"cancelled", true, nil, http.StatusOK, `{"data":{"cancelled":true}}`},
		{"unknown", false, nil, http.StatusNotFound, `{"data":{"cancelled":false}}`},
		{"started", false, bookingserrors.ErrAlreadyStartedOrPast, http.StatusConflict,
			`{"error":"cannot cancel a booking that has started or ended","code":"CONFLICT"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			svc := &mockBookingService{
				cancelFunc: func(_ context.Context, id string) (bool, error) {
					gotID = id
					return tt.cancelled, tt.err
				},
			}

			rec := serve(newRouter(svc), http.MethodDelete, "/api/v1/bookings/id/bk-1", "")

			assert.Equal(t, "bk-1", gotID)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAvailable(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &mockBookingService{
		availableFunc: func(_ context.Context, s, e time.Time) ([]*model.Room, error) {
			gotStart, gotEnd = s, e
			if s.IsZero() || e.IsZero() {
				return nil, bookingserrors.ErrWindowRequired
			}
			return []*model.Room{model.NewRoom("R2", "Borealis", 4)}, nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, http.MethodGet, "/api/v1/rooms/available?start_time=2026-01-19T13:00:00Z&end_time=2026-01-19T14:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotStart.Equal(start))
	assert.True(t, gotEnd.Equal(start.Add(time.Hour)))
	assert.JSONEq(t, `{"data":[{"id":"R2","name":"Borealis","capacity":4,"bookings":[]}],"total_count":1}`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/v1/rooms/available?start_time=2026-01-19T13:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "both start and end time must be given", decodeError(t, rec).Error)

	rec = serve(router, http.MethodGet, "/api/v1/rooms/available?start_time=noon&end_time=2026-01-19T14:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid start_time format, must be RFC3339", decodeError(t, rec).Error)
}

func TestGetRoom(t *testing.T) {
	svc := &mockBookingService{
		getRoomFunc: func(_ context.Context, id string) (*model.Room, error) {
			if id != "R1" {
				return nil, bookingserrors.ErrRoomNotFound
			}
			room := model.NewRoom("R1", "Aurora", 8)
			b, err := model.NewBooking("b1", "R1", start, start.Add(time.Hour), start)
			if err != nil {
				return nil, err
			}
			return room, room.AddBooking(b)
		},
	}
	router := newRouter(svc)

	rec := serve(router, http.MethodGet, "/api/v1/rooms/id/R1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data model.RoomView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Aurora", resp.Data.Name)
	require.Len(t, resp.Data.Bookings, 1)
	assert.Equal(t, "b1", resp.Data.Bookings[0].ID)

	rec = serve(router, http.MethodGet, "/api/v1/rooms/id/R9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRooms(t *testing.T) {
	svc := &mockBookingService{
		listRoomsFunc: func(context.Context) ([]*model.Room, error) {
			return []*model.Room{model.NewRoom("R1", "Aurora", 8), model.NewRoom("R2", "Borealis", 4)}, nil
		},
	}

	rec := serve(newRouter(svc), http.MethodGet, "/api/v1/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []model.RoomView `json:"data"`
		TotalCount int              `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, "R1", resp.Data[0].ID)
}

func TestToAppError_PassesAppErrorsThrough(t *testing.T) {
	conflict := apperrors.Conflict("busy")
	assert.Same(t, conflict, toAppError(conflict))

	wrapped := toAppError(bookingserrors.ErrBookingIDRequired)
	assert.ErrorIs(t, wrapped, bookingserrors.ErrInvalidRequest)
	assert.Equal(t, "booking id cannot be null", apperrors.AsAppError(wrapped).Message)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(stubPinger{}, logger.Discard()).RegisterRoutes(router)

	rec := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","store":"ok"}`, rec.Body.String())

	down := httprouter.New()
	NewHealthHandler(stubPinger{err: errors.New("no reachable servers")}, logger.Discard()).RegisterRoutes(down)
	rec = serve(down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","store":"error"}`, rec.Body.String())
}
