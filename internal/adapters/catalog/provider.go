// Package catalog supplies the candidate tracks a playlist is ranked from.
//
// Two providers implement the same capability: Static serves a fixed,
// validated track list (embedded or loaded from a file) and Spotify asks the
// recommendations API for tracks near the derived target. The ranker does not
// know which one produced its input.
package catalog

import (
	"context"

	"github.com/okian/revbeat/internal/domain/model"
)

// Provider returns candidate tracks for a target. Implementations may use
// target and count to narrow the request or ignore them entirely.
type Provider interface {
	Name() string
	Tracks(ctx context.Context, target model.TargetVector, count int) ([]model.Track, error)
}
