package geocode

import (
	"errors"
)

// Sentinel error kinds for lookups.
var (
	ErrNotFound    = errors.New("location not found")
	ErrCoordinates = errors.New("malformed coordinates")
)
