package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMethodNotAllowed  = errors.New("method not allowed")
	ErrMissingParameters = errors.New("missing required parameters")
	ErrInvalidParameter  = errors.New("invalid parameter")
)

// Client-facing messages.
const (
	msgMethodNotAllowed  = "Method not allowed"
	msgMissingParameters = "Missing required parameters"
)
