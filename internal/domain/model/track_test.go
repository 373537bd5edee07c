package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/revbeat/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTrack_Validate(t *testing.T) {
	convey.Convey("Given catalog tracks", t, func() {
		valid := model.Track{
			ID:       "t-1",
			Name:     "Morning Light",
			Artist:   "The Harbors",
			Features: model.Features{Valence: 0.7, Energy: 0.4, Genres: []string{"acoustic"}},
		}

		convey.Convey("When the track is complete", func() {
			convey.Convey("Then it should validate", func() {
				convey.So(valid.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When features sit on the bounds", func() {
			edge := valid
			edge.Features.Valence = 0
			edge.Features.Energy = 1

			convey.Convey("Then it should validate", func() {
				convey.So(edge.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the id is missing", func() {
			missing := valid
			missing.ID = ""

			convey.Convey("Then it should be rejected", func() {
				err := missing.Validate()
				convey.So(errors.Is(err, model.ErrInvalidTrack), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "missing id")
			})
		})

		convey.Convey("When valence is out of range", func() {
			bad := valid
			bad.Features.Valence = 1.2

			convey.Convey("Then it should be rejected", func() {
				err := bad.Validate()
				convey.So(errors.Is(err, model.ErrInvalidTrack), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "valence")
			})
		})

		convey.Convey("When energy is negative", func() {
			bad := valid
			bad.Features.Energy = -0.1

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(bad.Validate(), model.ErrInvalidTrack), convey.ShouldBeTrue)
			})
		})
	})
}

func TestTrack_MatchesAny(t *testing.T) {
	convey.Convey("Given a track tagged rock and indie", t, func() {
		track := model.Track{ID: "t-2", Features: model.Features{Genres: []string{"rock", "indie"}}}

		convey.Convey("Then overlapping genre sets should match", func() {
			convey.So(track.MatchesAny([]string{"road-trip", "indie"}), convey.ShouldBeTrue)
		})

		convey.Convey("And disjoint genre sets should not match", func() {
			convey.So(track.MatchesAny([]string{"pop", "dance"}), convey.ShouldBeFalse)
		})

		convey.Convey("And an empty affinity should never match", func() {
			convey.So(track.MatchesAny(nil), convey.ShouldBeFalse)
		})

		convey.Convey("And matching should be case sensitive", func() {
			convey.So(track.MatchesAny([]string{"Rock"}), convey.ShouldBeFalse)
		})
	})
}
