package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/revbeat/internal/domain/model"
	scoring "github.com/okian/revbeat/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func track(id string, valence, energy float64, genres ...string) model.Track {
	return model.Track{
		ID:       id,
		Name:     "Track " + id,
		Artist:   "Artist " + id,
		Features: model.Features{Valence: valence, Energy: energy, Genres: genres},
	}
}

func ids(tracks []model.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestScore(t *testing.T) {
	Convey("Given a chill target", t, func() {
		target := model.TargetVector{Valence: 0.6, Energy: 0.3, GenreAffinity: []string{"chill", "acoustic", "ambient"}}

		Convey("When a track sits exactly on the target without a genre match", func() {
			Convey("Then its score should be zero", func() {
				So(scoring.Score(target, track("a", 0.6, 0.3, "metal")), ShouldAlmostEqual, 0, 1e-9)
			})
		})

		Convey("When a track matches a genre", func() {
			Convey("Then the genre bonus should be subtracted", func() {
				So(scoring.Score(target, track("b", 0.6, 0.3, "ambient")), ShouldAlmostEqual, -scoring.GenreBonus, 1e-9)
			})
		})

		Convey("When a track is far from the target", func() {
			Convey("Then its score should be the L1 distance", func() {
				So(scoring.Score(target, track("c", 0.1, 0.9)), ShouldAlmostEqual, 1.1, 1e-9)
			})
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given a party target", t, func() {
		target := model.TargetVector{Valence: 0.9, Energy: 0.7, GenreAffinity: []string{"pop", "dance", "party"}}

		Convey("When two tracks are equally distant but only one matches a genre", func() {
			catalog := []model.Track{
				track("plain", 0.8, 0.6, "folk"),
				track("genre", 0.8, 0.6, "dance"),
			}
			got := scoring.RankScored(target, catalog, 2)

			Convey("Then the genre match should sort first by exactly the bonus", func() {
				So(got[0].Track.ID, ShouldEqual, "genre")
				So(got[1].Score-got[0].Score, ShouldAlmostEqual, scoring.GenreBonus, 1e-9)
			})
		})

		Convey("When several tracks tie", func() {
			catalog := []model.Track{
				track("t1", 0.5, 0.5),
				track("near", 0.9, 0.7),
				track("t2", 0.5, 0.5),
				track("t3", 0.5, 0.5),
				track("t4", 0.5, 0.5),
			}

			Convey("Then tied tracks should keep catalog order", func() {
				So(ids(scoring.Rank(target, catalog, 5)), ShouldResemble, []string{"near", "t1", "t2", "t3", "t4"})
			})

			Convey("And repeated ranking should be reproducible", func() {
				So(scoring.Rank(target, catalog, 5), ShouldResemble, scoring.Rank(target, catalog, 5))
			})
		})

		Convey("When ranking a larger catalog", func() {
			catalog := []model.Track{
				track("far", 0.1, 0.1),
				track("mid", 0.6, 0.5),
				track("close", 0.85, 0.75),
				track("exact", 0.9, 0.7, "pop"),
			}

			Convey("Then results should be ordered by ascending score", func() {
				got := scoring.RankScored(target, catalog, 4)
				So(ids(scoring.Rank(target, catalog, 4)), ShouldResemble, []string{"exact", "close", "mid", "far"})
				for i := 1; i < len(got); i++ {
					So(got[i].Score, ShouldBeGreaterThanOrEqualTo, got[i-1].Score)
				}
			})

			Convey("And the catalog should not be modified", func() {
				before := append([]model.Track(nil), catalog...)
				_ = scoring.Rank(target, catalog, 2)
				So(catalog, ShouldResemble, before)
			})
		})
	})
}

func TestRank_Truncation(t *testing.T) {
	Convey("Given a catalog of ten tracks", t, func() {
		target := model.TargetVector{Valence: 0.5, Energy: 0.5, GenreAffinity: []string{"pop"}}
		catalog := make([]model.Track, 10)
		for i := range catalog {
			catalog[i] = track(string(rune('a'+i)), float64(i)/10, 0.5)
		}

		Convey("Then the result length should be min(count, catalog)", func() {
			for _, n := range []int{1, 3, 9, 10, 11, 50} {
				So(len(scoring.Rank(target, catalog, n)), ShouldEqual, min(n, len(catalog)))
			}
		})

		Convey("And non-positive counts should still return one track", func() {
			So(len(scoring.Rank(target, catalog, 0)), ShouldEqual, 1)
			So(len(scoring.Rank(target, catalog, -4)), ShouldEqual, 1)
		})
	})

	Convey("Given a catalog larger than the playlist cap", t, func() {
		target := model.TargetVector{Valence: 0.5, Energy: 0.5, GenreAffinity: []string{"pop"}}
		catalog := make([]model.Track, 150)
		for i := range catalog {
			catalog[i] = track("t", 0.5, 0.5)
		}

		Convey("Then the result should never exceed the cap", func() {
			So(len(scoring.Rank(target, catalog, 500)), ShouldEqual, scoring.MaxTracks)
		})
	})

	Convey("Given an empty catalog", t, func() {
		Convey("Then ranking should return nothing", func() {
			So(scoring.Rank(model.TargetVector{}, nil, 5), ShouldBeEmpty)
			So(scoring.RankScored(model.TargetVector{}, []model.Track{}, 5), ShouldBeEmpty)
		})
	})
}

func TestTrackCount(t *testing.T) {
	Convey("Given trip durations in minutes", t, func() {
		Convey("Then a single average track should need one slot", func() {
			So(scoring.TrackCount(210.0/60), ShouldEqual, 1)
		})

		Convey("And thirty minutes should need nine tracks", func() {
			So(scoring.TrackCount(30), ShouldEqual, 9)
		})

		Convey("And exact multiples should not round up", func() {
			So(scoring.TrackCount(7), ShouldEqual, 2)
		})

		Convey("And very long trips should be capped", func() {
			So(scoring.TrackCount(3500), ShouldEqual, scoring.MaxTracks)
			So(scoring.TrackCount(math.Inf(1)), ShouldEqual, scoring.MaxTracks)
		})

		Convey("And tiny durations should still yield one track", func() {
			So(scoring.TrackCount(0.01), ShouldEqual, 1)
		})

		Convey("And invalid durations should fall back to the minimum", func() {
			So(scoring.TrackCount(0), ShouldEqual, scoring.MinTracks)
			So(scoring.TrackCount(-5), ShouldEqual, scoring.MinTracks)
			So(scoring.TrackCount(math.NaN()), ShouldEqual, scoring.MinTracks)
		})

		Convey("And every positive duration should stay in bounds", func() {
			for d := 0.5; d < 5000; d *= 1.7 {
				n := scoring.TrackCount(d)
				So(n, ShouldBeBetweenOrEqual, scoring.MinTracks, scoring.MaxTracks)
			}
		})
	})
}
