package upstream

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for outbound calls.
var (
	ErrStatus      = errors.New("unexpected upstream status")
	ErrDecode      = errors.New("decode upstream response")
	ErrBreakerOpen = errors.New("upstream circuit open")
	ErrRequest     = errors.New("build upstream request")
)

// StatusError carries the final non-2xx status of a call.
type StatusError struct {
	Collaborator string
	Code         int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Collaborator, e.Code)
}

// Is reports ErrStatus for any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// StatusCode extracts the status from err, or 0 if err is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
