// Package geocode resolves a free-text place name to coordinates using a
// Nominatim-compatible search API.
package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/okian/revbeat/internal/adapters/upstream"
	"github.com/okian/revbeat/pkg/logger"
)

// Location is the first search hit for a query.
type Location struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// place mirrors one Nominatim search result; coordinates arrive as strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Client looks up places.
type Client struct {
	api     *upstream.Client
	baseURL string
	limiter *rate.Limiter
	log     logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithRateLimit caps outbound lookups at rps requests per second (0 disables).
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a geocoder on top of api rooted at baseURL.
func New(api *upstream.Client, baseURL string, opts ...Option) *Client {
	c := &Client{
		api:     api,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("geocode")
	}
	return c
}

// Lookup returns the best match for city.
func (c *Client) Lookup(ctx context.Context, city string) (Location, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Location{}, fmt.Errorf("geocode: rate limit wait: %w", err)
		}
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []place
	if err := c.api.GetJSON(ctx, c.baseURL+"/search", q, &places); err != nil {
		return Location{}, err
	}
	if len(places) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, city)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(places[0].Lat), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: lat %q", ErrCoordinates, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(places[0].Lon), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: lon %q", ErrCoordinates, places[0].Lon)
	}

	loc := Location{Lat: lat, Lon: lon, DisplayName: places[0].DisplayName}
	c.log.Debug(ctx, "resolved location",
		logger.String("city", city),
		logger.String("displayName", loc.DisplayName),
		logger.Float64("lat", lat),
		logger.Float64("lon", lon),
	)
	return loc, nil
}
