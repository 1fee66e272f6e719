package auth

import "errors"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAccountExists = errors.New("account already exists")
	ErrInvalidCity   = errors.New("unknown city")
)
