package auth

import "errors"

var (
	ErrValidation         = errors.New("invalid auth request")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
