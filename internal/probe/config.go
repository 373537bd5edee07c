// Package probe fires a matrix of recommendation requests at a running
// server and checks every response against the playlist invariants.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Cities      []string      // Cities to request
	Moods       []string      // Mood strings to request
	LocalTimes  []string      // HH:MM wall clock times
	Durations   []int         // Trip lengths in minutes
	Concurrency int           // Requests in flight at once
	Timeout     time.Duration // Per-request timeout
	OutputFile  string        // Results file; generated when empty
	Verbose     bool          // Log every case
}

// Case is one point of the request matrix.
type Case struct {
	City      string `json:"city"`
	Mood      string `json:"mood"`
	LocalTime string `json:"localTime"`
	Duration  int    `json:"duration"`
}

// Result is the outcome of one case.
type Result struct {
	Case          Case     `json:"case"`
	Status        int      `json:"status"`
	LatencyMs     float64  `json:"latencyMs"`
	Tracks        int      `json:"tracks"`
	MaxTracks     int      `json:"maxTracks"`
	TargetValence float64  `json:"targetValence"`
	TargetEnergy  float64  `json:"targetEnergy"`
	SeedGenres    []string `json:"seedGenres,omitempty"`
	Violations    []string `json:"violations,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Passed reports whether the case met every invariant.
func (r Result) Passed() bool {
	return r.Error == "" && len(r.Violations) == 0
}

// Stats summarizes a run.
type Stats struct {
	Cases        int     `json:"cases"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	Errored      int     `json:"errored"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	MaxLatencyMs float64 `json:"maxLatencyMs"`
}

// Report is what a run writes to its results file.
type Report struct {
	RunID     string        `json:"runId"`
	BaseURL   string        `json:"baseUrl"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
	Stats     Stats         `json:"stats"`
	Results   []Result      `json:"results"`
}
