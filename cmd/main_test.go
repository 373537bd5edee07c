package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/revbeat/internal/adapters/catalog"
	"github.com/okian/revbeat/internal/config"
	"github.com/okian/revbeat/internal/domain/types"
	"github.com/okian/revbeat/pkg/logger"
)

// fakeWorld answers the geocoder and weather endpoints on one server.
func fakeWorld() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"-6.2","lon":"106.8","display_name":"Jakarta, Indonesia"}]`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":27.4,"weathercode":61}}`))
	})
	return httptest.NewServer(mux)
}

func testConfig(baseURL string) *config.Config {
	cfg := config.New()
	cfg.GeocoderURL = baseURL
	cfg.GeocoderRPS = 0
	cfg.WeatherURL = baseURL
	cfg.UpstreamMaxRetries = 1
	cfg.UpstreamBackoffMS = 0
	cfg.RateLimitRequests = 0
	return cfg
}

func TestNewHandler(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given the application wired against fake collaborators", t, func() {
		world := fakeWorld()
		defer world.Close()

		ctx := context.Background()
		handler, svc, err := newHandler(ctx, testConfig(world.URL))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.CatalogProvider(), convey.ShouldEqual, "static")

		convey.Convey("When a playlist is requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/recommend?city=Jakarta&mood=chill&duration=20&localTime=22:00", http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			convey.Convey("Then the full pipeline should answer", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)

				var rec types.Recommendation
				convey.So(json.Unmarshal(w.Body.Bytes(), &rec), convey.ShouldBeNil)
				convey.So(rec.Context.Location, convey.ShouldEqual, "Jakarta, Indonesia")
				convey.So(rec.Context.Weather.Code, convey.ShouldEqual, 61)
				convey.So(rec.Tracks, convey.ShouldHaveLength, 6)
			})
		})

		convey.Convey("When the docs are requested", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody))

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When stats are requested", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))

			var stats struct {
				CatalogProvider string            `json:"catalogProvider"`
				Breakers        map[string]string `json:"breakers"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &stats), convey.ShouldBeNil)

			convey.Convey("Then every collaborator breaker should be reported", func() {
				convey.So(stats.CatalogProvider, convey.ShouldEqual, "static")
				convey.So(stats.Breakers, convey.ShouldResemble, map[string]string{
					collaboratorGeocoder: "closed",
					collaboratorWeather:  "closed",
				})
			})
		})
	})
}

func TestNewCatalog(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a catalog file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		data := []byte(`- id: x1
  name: Night Drive
  artist: The Lanes
  url: https://example.com/x1
  features: {valence: 0.4, energy: 0.8, genres: [rock]}
`)
		convey.So(os.WriteFile(path, data, 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.CatalogFile = path

		convey.Convey("When the static provider is selected", func() {
			cat, api, err := newCatalog(context.Background(), cfg, nil)

			convey.Convey("Then the file should replace the embedded catalog", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(api, convey.ShouldBeNil)
				static, ok := cat.(*catalog.Static)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(static.Len(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the file has an unknown extension", func() {
			cfg.CatalogFile = filepath.Join(t.TempDir(), "catalog.csv")
			_, _, err := newCatalog(context.Background(), cfg, nil)

			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given the spotify provider", t, func() {
		cfg := config.New()
		cfg.CatalogProvider = config.ProviderSpotify
		cfg.SpotifyClientID = "id"
		cfg.SpotifyClientSecret = "secret"

		cat, api, err := newCatalog(context.Background(), cfg, nil)

		convey.Convey("Then its upstream client should be exposed for breaker reporting", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cat.Name(), convey.ShouldEqual, "spotify")
			convey.So(api, convey.ShouldNotBeNil)
			convey.So(api.Name(), convey.ShouldEqual, collaboratorSpotify)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("When updating once", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("When the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()

			convey.Convey("Then the loop should return", func() {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					t.Fatal("metrics updater did not stop")
				}
			})
		})
	})
}
