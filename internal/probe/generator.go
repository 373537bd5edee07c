package probe

import (
	"strings"
)

// Matrix expands the configured axes into every combination, falling back
// to the defaults for an empty axis.
func Matrix(cfg *Config) []Case {
	cities := orDefault(cfg.Cities, DefaultCities)
	moods := orDefault(cfg.Moods, DefaultMoods)
	times := orDefault(cfg.LocalTimes, DefaultLocalTimes)
	durations := cfg.Durations
	if len(durations) == 0 {
		durations = DefaultDurations
	}

	cases := make([]Case, 0, len(cities)*len(moods)*len(times)*len(durations))
	for _, city := range cities {
		for _, mood := range moods {
			for _, lt := range times {
				for _, d := range durations {
					cases = append(cases, Case{City: city, Mood: mood, LocalTime: lt, Duration: d})
				}
			}
		}
	}
	return cases
}

// SplitList parses a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
