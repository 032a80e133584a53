package errors

import "errors"

// ErrInvalidRequest is the kind shared by every missing-input error below;
// match it with errors.Is when the exact message does not matter.
var ErrInvalidRequest = errors.New("invalid request")

type invalidRequestError struct {
	msg string
}

func (e *invalidRequestError) Error() string { return e.msg }

func (e *invalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

var (
	ErrBookingFieldsRequired = &invalidRequestError{msg: "valid start/end times and room id required"}

	ErrBookingIDRequired = &invalidRequestError{msg: "booking id cannot be null"}

	ErrWindowRequired = &invalidRequestError{msg: "both start and end time must be given"}

	ErrRoomIDRequired = &invalidRequestError{msg: "room id cannot be empty"}

	ErrPastBooking = errors.New("cannot book a time in the past")

	ErrInvalidWindow = errors.New("end time must be after start time")

	ErrRoomNotFound = errors.New("room does not exist")

	ErrAlreadyStartedOrPast = errors.New("cannot cancel a booking that has started or ended")
)
