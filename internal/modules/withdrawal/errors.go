package withdrawal

import "errors"

var (
	ErrValidation        = errors.New("invalid withdrawal request")
	ErrNotFound          = errors.New("withdrawal not found")
	ErrInvalidTransition = errors.New("invalid withdrawal transition")
	ErrInsufficientFunds = errors.New("insufficient balance")
)
