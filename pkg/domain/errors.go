package domain

import "errors"

// save errors, each maps to its own response status
var (
	ErrUnauthorized = errors.New("nonce verification failed")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrBadRequest   = errors.New("missing display text")
	ErrInternal     = errors.New("failed to save display text")
)
