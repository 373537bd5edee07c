package probe

import "errors"

// Error constants.
var (
	ErrEmptyMatrix = errors.New("probe matrix is empty")
	ErrUnhealthy   = errors.New("service health check failed")
	ErrViolations  = errors.New("invariant violations detected")
)
