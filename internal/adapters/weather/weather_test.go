package weather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/okian/revbeat/internal/adapters/upstream"
	"github.com/okian/revbeat/internal/adapters/weather"
	"github.com/okian/revbeat/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCurrent(t *testing.T) {
	_ = logger.Init()

	Convey("Given an Open-Meteo compatible server", t, func() {
		var path string
		var query url.Values
		serve := func(body string) *httptest.Server {
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				query = r.URL.Query()
				_, _ = w.Write([]byte(body))
			}))
		}

		Convey("When current weather is present", func() {
			srv := serve(`{"latitude":38.7,"longitude":-9.1,"current_weather":{"temperature":14.2,"windspeed":9.4,"weathercode":61,"is_day":1}}`)
			defer srv.Close()

			c := weather.New(upstream.New("weather"), srv.URL)
			cur, err := c.Current(context.Background(), 38.7077507, -9.1365919)

			Convey("Then code and temperature are read", func() {
				So(err, ShouldBeNil)
				So(cur.Code, ShouldEqual, 61)
				So(cur.Temperature, ShouldEqual, 14.2)
			})

			Convey("Then the forecast endpoint is queried for current weather", func() {
				So(path, ShouldEqual, "/forecast")
				So(query.Get("latitude"), ShouldEqual, "38.7077507")
				So(query.Get("longitude"), ShouldEqual, "-9.1365919")
				So(query.Get("current_weather"), ShouldEqual, "true")
			})
		})

		Convey("When the current_weather block is missing", func() {
			srv := serve(`{"latitude":38.7,"longitude":-9.1}`)
			defer srv.Close()

			c := weather.New(upstream.New("weather"), srv.URL)
			_, err := c.Current(context.Background(), 1, 2)

			Convey("Then a decode error is returned", func() {
				So(errors.Is(err, upstream.ErrDecode), ShouldBeTrue)
				So(errors.Is(err, weather.ErrNoCurrentWeather), ShouldBeTrue)
			})
		})

		Convey("When the upstream fails", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			c := weather.New(upstream.New("weather", upstream.WithRetries(1, 0)), srv.URL)
			_, err := c.Current(context.Background(), 1, 2)

			Convey("Then the status error propagates", func() {
				So(errors.Is(err, upstream.ErrStatus), ShouldBeTrue)
			})
		})
	})
}
