package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/service"
	"roombook/internal/bookings/validator"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type BookResponse struct {
	Booked  bool           `json:"booked"`
	Booking *model.Booking `json:"booking,omitempty"`
}

type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := sanitizer.SanitizeID(ps.ByName("id"))

	var req model.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
			Code:  apperrors.CodeInvalidInput,
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.validator.ValidateBookRequest(&req); err != nil {
		appErr := apperrors.InvalidInput(bookingserrors.ErrBookingFieldsRequired.Error())
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			appErr = appErr.WithDetails(verrs.Details())
		}
		h.writeError(w, "Book", appErr)
		return
	}

	booking, err := h.service.Book(r.Context(), roomID, req.StartTime, req.EndTime)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if booking == nil {
		if err := httputil.WriteJSON(w, http.StatusConflict, httputil.SuccessResponse{Data: BookResponse{Booked: false}}); err != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := httputil.WriteCreated(w, BookResponse{Booked: true, Booking: booking}); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := sanitizer.SanitizeID(ps.ByName("id"))

	cancelled, err := h.service.CancelBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	status := http.StatusOK
	if !cancelled {
		status = http.StatusNotFound
	}
	if err := httputil.WriteJSON(w, status, httputil.SuccessResponse{Data: CancelResponse{Cancelled: cancelled}}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Cancel", "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) Available(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start, err := httputil.ParseTimeParam(r, "start_time")
	if err != nil {
		h.writeError(w, "Available", err)
		return
	}
	end, err := httputil.ParseTimeParam(r, "end_time")
	if err != nil {
		h.writeError(w, "Available", err)
		return
	}

	rooms, err := h.service.GetAvailableRooms(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "Available", err)
		return
	}

	if err := httputil.WriteList(w, rooms, len(rooms)); err != nil {
		h.log.Error("failed to write list response", "handler", "Available", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.writeError(w, "ListRooms", err)
		return
	}

	if err := httputil.WriteList(w, rooms, len(rooms)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListRooms", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetRoom(r.Context(), sanitizer.SanitizeID(ps.ByName("id")))
	if err != nil {
		h.writeError(w, "GetRoom", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRoom", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, toAppError(err)); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rooms/id/:id/bookings", h.Book)
	router.GET("/api/v1/rooms", h.ListRooms)
	router.GET("/api/v1/rooms/id/:id", h.GetRoom)
	router.GET("/api/v1/rooms/available", h.Available)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
}
