package types_test

import (
	"testing"

	json "github.com/goccy/go-json"
	types "github.com/okian/revbeat/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommendation_JSON(t *testing.T) {
	Convey("Given a recommendation with a track lacking a preview", t, func() {
		rec := types.Recommendation{
			Context: types.Context{
				Location: "Jakarta, Indonesia",
				Weather:  types.Weather{Code: 61, Temperature: 27.4},
				Targets:  types.Targets{TargetValence: 0.6, TargetEnergy: 0.3, SeedGenres: []string{"chill"}},
			},
			Tracks: []types.TrackView{{ID: "t-1", Name: "Song", Artist: "Band", Album: "RevBeat Originals", SpotifyURL: "https://example.com/t-1"}},
		}

		Convey("When encoding it", func() {
			raw, err := json.Marshal(rec)
			So(err, ShouldBeNil)

			var generic map[string]any
			So(json.Unmarshal(raw, &generic), ShouldBeNil)

			Convey("Then the context should use the public field names", func() {
				ctx := generic["context"].(map[string]any)
				targets := ctx["targets"].(map[string]any)
				So(ctx["location"], ShouldEqual, "Jakarta, Indonesia")
				So(targets, ShouldContainKey, "targetValence")
				So(targets, ShouldContainKey, "targetEnergy")
				So(targets, ShouldContainKey, "seedGenres")
			})

			Convey("And the preview url should be an explicit null", func() {
				track := generic["tracks"].([]any)[0].(map[string]any)
				So(track, ShouldContainKey, "preview_url")
				So(track["preview_url"], ShouldBeNil)
				So(track["spotify_url"], ShouldEqual, "https://example.com/t-1")
			})

			Convey("And no score should leak into the output", func() {
				track := generic["tracks"].([]any)[0].(map[string]any)
				So(track, ShouldNotContainKey, "score")
			})
		})
	})

	Convey("Given an error body", t, func() {
		raw, err := json.Marshal(types.Error{Error: "Missing required parameters"})

		Convey("Then it should serialize under the error key", func() {
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"error":"Missing required parameters"}`)
		})
	})
}
