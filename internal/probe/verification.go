package probe

import (
	"fmt"
	"net/http"

	"github.com/okian/revbeat/internal/domain/scoring"
	"github.com/okian/revbeat/internal/domain/types"
)

// verify checks one response against the playlist invariants and returns
// the list of violations.
func verify(c Case, status int, rec *types.Recommendation) []string {
	var v []string
	if status != http.StatusOK {
		return append(v, fmt.Sprintf("status %d, want 200", status))
	}
	if rec == nil {
		return append(v, "empty body")
	}

	if limit := scoring.TrackCount(float64(c.Duration)); len(rec.Tracks) > limit {
		v = append(v, fmt.Sprintf("%d tracks exceeds %d for %d minutes", len(rec.Tracks), limit, c.Duration))
	}

	t := rec.Context.Targets
	if t.TargetValence < 0 || t.TargetValence > 1 {
		v = append(v, fmt.Sprintf("targetValence %.3f outside [0,1]", t.TargetValence))
	}
	if t.TargetEnergy < 0 || t.TargetEnergy > 1 {
		v = append(v, fmt.Sprintf("targetEnergy %.3f outside [0,1]", t.TargetEnergy))
	}
	if len(t.SeedGenres) == 0 {
		v = append(v, "seedGenres is empty")
	}

	seen := make(map[string]struct{}, len(rec.Tracks))
	for _, tr := range rec.Tracks {
		if _, dup := seen[tr.ID]; dup {
			v = append(v, "duplicate track "+tr.ID)
		}
		seen[tr.ID] = struct{}{}
	}
	return v
}

// summarize folds results into run statistics.
func summarize(results []Result) Stats {
	s := Stats{Cases: len(results)}
	var total float64
	for _, r := range results {
		switch {
		case r.Error != "":
			s.Errored++
		case r.Passed():
			s.Passed++
		default:
			s.Failed++
		}
		total += r.LatencyMs
		if r.LatencyMs > s.MaxLatencyMs {
			s.MaxLatencyMs = r.LatencyMs
		}
	}
	if len(results) > 0 {
		s.AvgLatencyMs = total / float64(len(results))
	}
	return s
}
