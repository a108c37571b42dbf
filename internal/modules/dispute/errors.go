package dispute

import "errors"

var (
	ErrValidation        = errors.New("invalid dispute request")
	ErrNotFound          = errors.New("dispute not found")
	ErrForbidden         = errors.New("not your dispute")
	ErrInvalidTransition = errors.New("invalid dispute transition")
	ErrRefundTooLarge    = errors.New("refund exceeds booking amount")
	ErrAlreadyDisputed   = errors.New("booking already has an open dispute")
	ErrNotDisputable     = errors.New("booking cannot be disputed")
)
