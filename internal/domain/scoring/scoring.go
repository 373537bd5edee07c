// Package scoring ranks catalog tracks against a target vector and sizes
// playlists from a trip duration.
package scoring

import (
	"math"
	"slices"

	"github.com/okian/revbeat/internal/domain/model"
)

// Ranking and sizing constants.
const (
	// GenreBonus is subtracted from the distance of tracks sharing a genre
	// with the target affinity.
	GenreBonus = 0.2

	// AverageTrackSeconds is the assumed mean track length used for sizing.
	AverageTrackSeconds = 210

	// MinTracks and MaxTracks bound every playlist.
	MinTracks = 1
	MaxTracks = 100
)

// Score returns the distance between a track and the target. Lower is better.
func Score(target model.TargetVector, t model.Track) float64 {
	d := math.Abs(t.Features.Valence-target.Valence) + math.Abs(t.Features.Energy-target.Energy)
	if t.MatchesAny(target.GenreAffinity) {
		d -= GenreBonus
	}
	return d
}

// RankScored scores every catalog track, orders them ascending by score and
// keeps the first count. Equal scores keep catalog order. The catalog is never
// modified.
func RankScored(target model.TargetVector, catalog []model.Track, count int) []model.ScoredTrack {
	if len(catalog) == 0 {
		return nil
	}
	count = min(max(count, MinTracks), MaxTracks, len(catalog))

	scored := make([]model.ScoredTrack, len(catalog))
	for i, t := range catalog {
		scored[i] = model.ScoredTrack{Track: t, Score: Score(target, t)}
	}
	slices.SortStableFunc(scored, func(a, b model.ScoredTrack) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	})
	return scored[:count:count]
}

// Rank is RankScored without the transient scores.
func Rank(target model.TargetVector, catalog []model.Track, count int) []model.Track {
	scored := RankScored(target, catalog, count)
	if scored == nil {
		return nil
	}
	out := make([]model.Track, len(scored))
	for i, s := range scored {
		out[i] = s.Track
	}
	return out
}

// TrackCount returns how many average-length tracks fill durationMinutes,
// rounded up and bounded to [MinTracks, MaxTracks]. Non-positive or NaN input
// yields MinTracks.
func TrackCount(durationMinutes float64) int {
	if !(durationMinutes > 0) {
		return MinTracks
	}
	n := math.Ceil(durationMinutes * 60 / AverageTrackSeconds)
	if n >= MaxTracks {
		return MaxTracks
	}
	return max(int(n), MinTracks)
}
