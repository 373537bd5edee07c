package catalog

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEmptyCatalog      = errors.New("catalog has no tracks")
	ErrInvalidCatalog    = errors.New("invalid catalog")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)
