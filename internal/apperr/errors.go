package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrLimit         = errors.New("limit reached")
	ErrInvalid       = errors.New("invalid input")
)
