package booking

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrNotEnoughSeats    = errors.New("not enough seats")
	ErrEventStarted      = errors.New("event already started")
	ErrEventNotEnded     = errors.New("event has not ended yet")
	ErrSeatCapExceeded   = errors.New("seats per booking cap exceeded")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOutsideWindow     = errors.New("outside check-in window")
)
