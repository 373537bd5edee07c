// Package weather reads current conditions from an Open-Meteo compatible API.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/revbeat/internal/adapters/upstream"
	"github.com/okian/revbeat/pkg/logger"
)

// ErrNoCurrentWeather is returned when the forecast lacks a current_weather block.
var ErrNoCurrentWeather = errors.New("response has no current weather")

// Current is the observed weather at a point.
type Current struct {
	// Code is the WMO weather interpretation code.
	Code        int
	Temperature float64
}

type forecast struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Client fetches current weather.
type Client struct {
	api     *upstream.Client
	baseURL string
	log     logger.Logger
}

// New builds a weather client on top of api rooted at baseURL.
func New(api *upstream.Client, baseURL string) *Client {
	return &Client{
		api:     api,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Named("weather"),
	}
}

// Current returns the weather at lat/lon.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Current, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")

	var f forecast
	if err := c.api.GetJSON(ctx, c.baseURL+"/forecast", q, &f); err != nil {
		return Current{}, err
	}
	if f.CurrentWeather == nil {
		return Current{}, fmt.Errorf("%w: %w", upstream.ErrDecode, ErrNoCurrentWeather)
	}

	cur := Current{Code: f.CurrentWeather.WeatherCode, Temperature: f.CurrentWeather.Temperature}
	c.log.Debug(ctx, "fetched current weather",
		logger.Int("code", cur.Code),
		logger.Float64("temperature", cur.Temperature),
	)
	return cur, nil
}
