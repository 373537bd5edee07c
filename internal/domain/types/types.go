// Package types contains the API-facing shapes shared by the service and the
// HTTP layer.
package types

// Recommendation is the body of a successful GET /api/recommend.
type Recommendation struct {
	Context Context     `json:"context"`
	Tracks  []TrackView `json:"tracks"`
}

// Context echoes the resolved listening context.
type Context struct {
	Location string  `json:"location"`
	Weather  Weather `json:"weather"`
	Targets  Targets `json:"targets"`
}

// Weather is the current weather at the resolved location.
type Weather struct {
	Code        int     `json:"code"`
	Temperature float64 `json:"temperature"`
}

// Targets is the derived target vector.
type Targets struct {
	TargetValence float64  `json:"targetValence"`
	TargetEnergy  float64  `json:"targetEnergy"`
	SeedGenres    []string `json:"seedGenres"`
}

// TrackView is a ranked track without its score.
type TrackView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Image      string  `json:"image"`
	PreviewURL *string `json:"preview_url"`
	SpotifyURL string  `json:"spotify_url"`
}

// Error is the body of every failed request.
type Error struct {
	Error string `json:"error"`
}
