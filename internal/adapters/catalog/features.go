package catalog

import (
	"hash/fnv"
	"math/rand"

	"github.com/okian/revbeat/internal/domain/model"
)

// syntheticFeatures stands in when the audio-features endpoint has nothing for
// a track. The same id always yields the same values, inside [0.1, 0.9].
func syntheticFeatures(trackID string) (valence, energy float64) {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(trackID))
	// #nosec G404 -- reproducible placeholder values, not security-sensitive
	rng := rand.New(rand.NewSource(int64(hasher.Sum32())))

	between := func(min, max float64) float64 {
		return min + rng.Float64()*(max-min)
	}
	energy = between(0.1, 0.9)
	valence = between(0.1, 0.9)
	return valence, energy
}

func allFeaturesZero(f audioFeatures) bool {
	return f.Valence == 0 && f.Energy == 0 && f.Danceability == 0 && f.Tempo == 0
}

func unitClamp(v float64) float64 {
	return min(1, max(0, v))
}

// featuresFor resolves the ranking features for one track.
func featuresFor(trackID string, af *audioFeatures, genres []string) (model.Features, bool) {
	if af == nil || allFeaturesZero(*af) {
		v, e := syntheticFeatures(trackID)
		return model.Features{Valence: v, Energy: e, Genres: genres}, true
	}
	return model.Features{
		Valence: unitClamp(af.Valence),
		Energy:  unitClamp(af.Energy),
		Genres:  genres,
	}, false
}
