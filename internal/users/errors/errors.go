package errors

import "errors"

var (
	ErrNotFound       = errors.New("user not found")
	ErrInvalidID      = errors.New("invalid user ID")
	ErrDuplicatePhone = errors.New("phone number already registered")
)
