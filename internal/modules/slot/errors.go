package slot

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrSlotNotFound   = errors.New("event slot not found")
	ErrSlotCancelled  = errors.New("event slot is cancelled")
	ErrNotEnoughSeats = errors.New("not enough seats")
	ErrForbidden      = errors.New("not the slot host")
)
