package models

import "errors"

// Sentinel errors shared across stores and services. Callers classify
// failures with errors.Is and map them to transport status codes.
var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmailTaken        = errors.New("email already registered")
	ErrBadCredentials    = errors.New("invalid email or password")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrTransient         = errors.New("transient store error")
)
