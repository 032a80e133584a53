package model

import "errors"

var (
	ErrInvalidBookingWindow = errors.New("booking end time must be after start time")
	ErrBookingRoomMismatch  = errors.New("booking belongs to a different room")
	ErrBookingNotInRoom     = errors.New("booking is not held by this room")
)
