package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"roombook/pkg/model"
	"time"
)

// RoomsClient talks to the bookings service HTTP API.
type RoomsClient struct {
	httpClient *HttpClient
}

func NewRoomsClient(baseURL string) *RoomsClient {
	return &RoomsClient{
		httpClient: NewHttpClient(baseURL),
	}
}

type BookResult struct {
	Booked  bool               `json:"booked"`
	Booking *model.BookingView `json:"booking,omitempty"`
}

type CancelResult struct {
	Cancelled bool `json:"cancelled"`
}

// APIError is returned for any response the client does not treat as an outcome.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookings api returned %d: %s", e.StatusCode, e.Message)
}

// Book returns the created booking, or a result with Booked=false when the
// room is already taken for that window.
func (c *RoomsClient) Book(ctx context.Context, roomID string, start, end time.Time, idempotencyKey string) (*BookResult, error) {
	body := map[string]string{
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	resp, err := c.httpClient.POST(ctx, "/api/v1/rooms/id/"+url.PathEscape(roomID)+"/bookings", body, headers)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data *BookResult `json:"data"`
		Code string      `json:"code"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, apiError(resp)
	}

	// 409 carries either a refusal outcome or a lock/version conflict error.
	switch {
	case resp.StatusCode == http.StatusCreated && envelope.Data != nil:
		return envelope.Data, nil
	case resp.StatusCode == http.StatusConflict && envelope.Data != nil && envelope.Code == "":
		return envelope.Data, nil
	}
	return nil, apiError(resp)
}

func (c *RoomsClient) Cancel(ctx context.Context, bookingID string) (bool, error) {
	resp, err := c.httpClient.DELETE(ctx, "/api/v1/bookings/id/"+url.PathEscape(bookingID))
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return false, apiError(resp)
	}

	var result CancelResult
	if err := decodeData(resp, &result); err != nil {
		return false, apiError(resp)
	}
	return result.Cancelled, nil
}

func (c *RoomsClient) Available(ctx context.Context, start, end time.Time) ([]model.RoomView, error) {
	q := url.Values{}
	q.Set("start_time", start.Format(time.RFC3339))
	q.Set("end_time", end.Format(time.RFC3339))
	return c.listRooms(ctx, "/api/v1/rooms/available?"+q.Encode())
}

func (c *RoomsClient) ListRooms(ctx context.Context) ([]model.RoomView, error) {
	return c.listRooms(ctx, "/api/v1/rooms")
}

func (c *RoomsClient) GetRoom(ctx context.Context, roomID string) (*model.RoomView, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/rooms/id/"+url.PathEscape(roomID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var room model.RoomView
	if err := decodeData(resp, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *RoomsClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(ctx, maxWait)
}

func (c *RoomsClient) listRooms(ctx context.Context, path string) ([]model.RoomView, error) {
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var list struct {
		Data       []model.RoomView `json:"data"`
		TotalCount int              `json:"total_count"`
	}
	if err := resp.DecodeJSON(&list); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return list.Data, nil
}

func decodeData(resp *Response, target any) error {
	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func apiError(resp *Response) error {
	return &APIError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
}
