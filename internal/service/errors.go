package service

import "errors"

// Sentinel errors forming the operation error taxonomy. Handlers map these to
// HTTP statuses; anything else is an internal error propagated with its
// message.
var (
	ErrValidation      = errors.New("invalid input")
	ErrNotFound        = errors.New("report not found")
	ErrAlreadyVerified = errors.New("already verified by this user")
	ErrInvalidStatus   = errors.New("invalid status")
)
