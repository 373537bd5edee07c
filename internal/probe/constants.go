package probe

import "time"

// Default matrix axes. Moods cover every rule plus one that matches none.
var (
	DefaultCities     = []string{"Jakarta", "Lisbon", "Reykjavik", "Nairobi", "Tokyo"}
	DefaultMoods      = []string{"chill evening", "party", "deep focus", "road trip drive", "melancholy"}
	DefaultLocalTimes = []string{"07:30", "13:00", "21:15", "02:00"}
	DefaultDurations  = []int{5, 30, 90, 400}
)

// Runner configuration constants.
const (
	DefaultConcurrency   = 8
	DefaultTimeout       = 15 * time.Second
	PercentageMultiplier = 100
)
