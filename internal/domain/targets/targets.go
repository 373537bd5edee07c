// Package targets derives the audio-feature point a playlist should match from
// the listener's context: current weather, declared mood and local clock time.
//
// Derivation runs in fixed stages over a running (valence, energy) pair that
// starts at (0.5, 0.5):
//
//  1. weather: codes >= 50 (drizzle, rain, showers, storms) lower the pair,
//     anything below raises it.
//  2. mood: the first matching rule assigns absolute values and its genre set.
//  3. night (hour >= 20 or <= 5): energy drops by 0.1, never below 0.2.
//  4. both values are clamped to [0, 1].
//
// A Deriver holds no mutable state and is safe for concurrent use.
package targets

import (
	"strings"

	"github.com/okian/revbeat/internal/domain/model"
)

const (
	neutral = 0.5

	adverseWeatherCode = 50
	adverseValence     = -0.2
	adverseEnergy      = -0.1
	fairValence        = 0.1
	fairEnergy         = 0.1

	nightFromHour    = 20
	nightUntilHour   = 5
	nightEnergyDrop  = 0.1
	nightEnergyFloor = 0.2
)

// NoRule is reported as the mood rule when no keyword matched.
const NoRule = "none"

// Rule maps mood keywords to absolute target values and a genre set.
type Rule struct {
	Name     string
	Keywords []string
	Valence  float64
	Energy   float64
	Genres   []string
}

func (r Rule) matches(mood string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(mood, kw) {
			return true
		}
	}
	return false
}

// Rules returns the mood rules in evaluation order.
func Rules() []Rule {
	return []Rule{
		{Name: "chill", Keywords: []string{"chill", "relax"}, Valence: 0.6, Energy: 0.3, Genres: []string{"chill", "acoustic", "ambient"}},
		{Name: "party", Keywords: []string{"happy", "party"}, Valence: 0.9, Energy: 0.8, Genres: []string{"pop", "dance", "party"}},
		{Name: "focus", Keywords: []string{"focus", "work"}, Valence: 0.5, Energy: 0.4, Genres: []string{"classical", "study", "piano"}},
		{Name: "drive", Keywords: []string{"drive", "road"}, Valence: 0.6, Energy: 0.7, Genres: []string{"rock", "road-trip", "indie"}},
	}
}

// DefaultGenres is the affinity used when no mood rule matches.
var DefaultGenres = []string{"pop"}

// Option configures a Deriver.
type Option func(*Deriver)

// WithDefaultGenres overrides the fallback genre affinity. Empty input is ignored
// so the affinity set can never be empty.
func WithDefaultGenres(genres []string) Option {
	return func(d *Deriver) {
		cleaned := make([]string, 0, len(genres))
		for _, g := range genres {
			if g = strings.TrimSpace(g); g != "" {
				cleaned = append(cleaned, g)
			}
		}
		if len(cleaned) > 0 {
			d.defaultGenres = cleaned
		}
	}
}

// Trace records how a target vector was reached.
type Trace struct {
	Targets  model.TargetVector
	MoodRule string
	Adverse  bool
	Night    bool
}

// Deriver turns context into a target vector.
type Deriver struct {
	rules         []Rule
	defaultGenres []string
}

// NewDeriver creates a Deriver with the built-in mood rules.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		rules:         Rules(),
		defaultGenres: append([]string(nil), DefaultGenres...),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive returns the target vector for the given weather code, mood label and
// "HH:MM" local time. It never fails; an unreadable time counts as daytime.
func (d *Deriver) Derive(weatherCode int, mood, localTime string) model.TargetVector {
	return d.Trace(weatherCode, mood, localTime).Targets
}

// Trace is Derive with the intermediate classification attached.
func (d *Deriver) Trace(weatherCode int, mood, localTime string) Trace {
	valence, energy := neutral, neutral
	genres := d.defaultGenres
	tr := Trace{MoodRule: NoRule}

	tr.Adverse = weatherCode >= adverseWeatherCode
	if tr.Adverse {
		valence += adverseValence
		energy += adverseEnergy
	} else {
		valence += fairValence
		energy += fairEnergy
	}

	lower := strings.ToLower(mood)
	for _, r := range d.rules {
		if r.matches(lower) {
			valence, energy = r.Valence, r.Energy
			genres = r.Genres
			tr.MoodRule = r.Name
			break
		}
	}

	if hour, ok := parseHour(localTime); ok && (hour >= nightFromHour || hour <= nightUntilHour) {
		tr.Night = true
		energy = max(nightEnergyFloor, energy-nightEnergyDrop)
	}

	tr.Targets = model.TargetVector{
		Valence:       clamp(valence),
		Energy:        clamp(energy),
		GenreAffinity: append([]string(nil), genres...),
	}
	return tr
}

// parseHour reads the leading integer of the part before ':'.
func parseHour(localTime string) (int, bool) {
	s := strings.TrimSpace(localTime)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n > 1_000_000 {
			break
		}
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func clamp(v float64) float64 {
	return min(1, max(0, v))
}
