// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTrack marks catalog entries that cannot be ranked.
var ErrInvalidTrack = errors.New("invalid track")

// Features holds the per-track audio metadata the ranker reads.
type Features struct {
	Valence float64  `json:"valence" yaml:"valence"` // 0 sad .. 1 happy
	Energy  float64  `json:"energy" yaml:"energy"`   // 0 calm .. 1 intense
	Genres  []string `json:"genres" yaml:"genres"`
}

// Track is a catalog entry. Tracks are owned by the catalog provider and are
// treated as read-only by the domain.
type Track struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Artist     string   `json:"artist" yaml:"artist"`
	Album      string   `json:"album,omitempty" yaml:"album,omitempty"`
	Image      string   `json:"image,omitempty" yaml:"image,omitempty"`
	PlayURL    string   `json:"url" yaml:"url"`
	PreviewURL string   `json:"preview_url,omitempty" yaml:"preview_url,omitempty"`
	Features   Features `json:"features" yaml:"features"`
}

// Validate reports whether the track carries usable ranking metadata.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTrack)
	}
	if !unit(t.Features.Valence) {
		return fmt.Errorf("%w: %s valence %v out of [0,1]", ErrInvalidTrack, t.ID, t.Features.Valence)
	}
	if !unit(t.Features.Energy) {
		return fmt.Errorf("%w: %s energy %v out of [0,1]", ErrInvalidTrack, t.ID, t.Features.Energy)
	}
	return nil
}

// MatchesAny reports whether any of the track genres is in genres.
func (t Track) MatchesAny(genres []string) bool {
	for _, g := range t.Features.Genres {
		for _, want := range genres {
			if g == want {
				return true
			}
		}
	}
	return false
}

// TargetVector is the point in (valence, energy) space a playlist should sit
// near, plus the genres that earn a ranking bonus.
type TargetVector struct {
	Valence       float64
	Energy        float64
	GenreAffinity []string
}

// ScoredTrack annotates a track with its distance to a target. Lower is better.
// It only exists while ranking.
type ScoredTrack struct {
	Track Track
	Score float64
}

func unit(v float64) bool { return v >= 0 && v <= 1 }
