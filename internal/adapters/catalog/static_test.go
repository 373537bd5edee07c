package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/revbeat/internal/adapters/catalog"
	"github.com/okian/revbeat/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return path
}

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the embedded catalog", t, func() {
		s, err := catalog.Default()

		Convey("Then it loads and validates", func() {
			So(err, ShouldBeNil)
			So(s.Name(), ShouldEqual, "static")
			So(s.Len(), ShouldBeGreaterThanOrEqualTo, 30)
		})

		Convey("Then every mood genre has at least one track", func() {
			tracks, err := s.Tracks(context.Background(), model.TargetVector{}, 5)
			So(err, ShouldBeNil)
			for _, g := range []string{"chill", "pop", "dance", "classical", "study", "piano", "rock", "road-trip", "indie"} {
				var found bool
				for _, tr := range tracks {
					if tr.MatchesAny([]string{g}) {
						found = true
						break
					}
				}
				So(found, ShouldBeTrue)
			}
		})

		Convey("Then Tracks ignores count and returns the full list", func() {
			tracks, _ := s.Tracks(context.Background(), model.TargetVector{}, 1)
			So(tracks, ShouldHaveLength, s.Len())
		})

		Convey("Then callers cannot reach the provider's copy", func() {
			tracks, _ := s.Tracks(context.Background(), model.TargetVector{}, 1)
			id := tracks[0].ID
			tracks[0].ID = "mutated"
			again, _ := s.Tracks(context.Background(), model.TargetVector{}, 1)
			So(again[0].ID, ShouldEqual, id)
		})
	})
}

func TestNewStatic(t *testing.T) {
	Convey("Given hand-built track lists", t, func() {
		Convey("When the list is empty", func() {
			_, err := catalog.NewStatic(nil)
			So(errors.Is(err, catalog.ErrEmptyCatalog), ShouldBeTrue)
		})

		Convey("When a track has out-of-range features", func() {
			_, err := catalog.NewStatic([]model.Track{{ID: "a", Features: model.Features{Valence: 1.2}}})
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
			So(errors.Is(err, model.ErrInvalidTrack), ShouldBeTrue)
		})

		Convey("When ids repeat", func() {
			_, err := catalog.NewStatic([]model.Track{{ID: "a"}, {ID: "a"}})
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "duplicate")
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given catalog files on disk", t, func() {
		dir := t.TempDir()

		Convey("When the file is YAML", func() {
			path := writeFile(dir, "tracks.yaml", `
- id: y1
  name: Hill Road
  artist: Tarn
  url: https://example.test/y1
  features:
    valence: 0.4
    energy: 0.6
    genres: [rock]
- id: y2
  name: Low Sun
  artist: Tarn
  url: https://example.test/y2
  features: {valence: 0.7, energy: 0.2, genres: [chill]}
`)
			s, err := catalog.LoadFile(path)

			Convey("Then tracks decode through yaml tags", func() {
				So(err, ShouldBeNil)
				tracks, _ := s.Tracks(context.Background(), model.TargetVector{}, 0)
				So(tracks, ShouldHaveLength, 2)
				So(tracks[0].PlayURL, ShouldEqual, "https://example.test/y1")
				So(tracks[1].Features.Genres, ShouldResemble, []string{"chill"})
			})
		})

		Convey("When the file is JSON", func() {
			path := writeFile(dir, "tracks.json", `[{"id":"j1","name":"N","artist":"A","url":"u","features":{"valence":0.1,"energy":0.9,"genres":[]}}]`)
			s, err := catalog.LoadFile(path)

			So(err, ShouldBeNil)
			So(s.Len(), ShouldEqual, 1)
		})

		Convey("When the extension is unknown", func() {
			path := writeFile(dir, "tracks.csv", "id,name")
			_, err := catalog.LoadFile(path)
			So(errors.Is(err, catalog.ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("When the content is malformed", func() {
			path := writeFile(dir, "broken.json", `{"id":`)
			_, err := catalog.LoadFile(path)
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
		})

		Convey("When the file does not exist", func() {
			_, err := catalog.LoadFile(filepath.Join(dir, "missing.json"))
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}
