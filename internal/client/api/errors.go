package api

import "errors"

// Sentinel errors for the failure classes the UI layer needs to tell apart:
// validation, bad credentials, duplicate registration, missing/foreign
// records, transport failures, and server faults. Match with errors.Is; the
// wrapped text carries the server's human-readable message.
var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("server unavailable")
	ErrServerFault        = errors.New("server error")
)
