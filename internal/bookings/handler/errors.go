package handler

import (
	"errors"

	bookingserrors "roombook/internal/bookings/errors"
	apperrors "roombook/pkg/errors"
)

// toAppError maps booking sentinels onto the HTTP error taxonomy. Errors that
// already are AppErrors pass through unchanged.
func toAppError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, bookingserrors.ErrInvalidRequest),
		errors.Is(err, bookingserrors.ErrInvalidWindow),
		errors.Is(err, bookingserrors.ErrPastBooking):
		return apperrors.InvalidInput(err.Error()).WithCause(err)
	case errors.Is(err, bookingserrors.ErrRoomNotFound):
		appErr := apperrors.NotFound("Room").WithCause(err)
		appErr.Message = err.Error()
		return appErr
	case errors.Is(err, bookingserrors.ErrAlreadyStartedOrPast):
		return apperrors.Conflict(err.Error()).WithCause(err)
	default:
		return apperrors.Internal("Unexpected booking error", err)
	}
}
