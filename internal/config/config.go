// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat and lowercase so env vars map 1:1 (REVBEAT_ADDR -> addr).
// - Durations are carried as integer milliseconds and exposed via helpers.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Catalog provider names.
const (
	ProviderStatic  = "static"
	ProviderSpotify = "spotify"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr" validate:"required"`

	// CatalogProvider selects where candidate tracks come from.
	CatalogProvider string `koanf:"catalog_provider" validate:"oneof=static spotify"`

	// CatalogFile optionally replaces the embedded static catalog (JSON or YAML).
	CatalogFile string `koanf:"catalog_file"`

	// DefaultAlbum labels tracks whose provider reports no album.
	DefaultAlbum string `koanf:"default_album"`

	// DefaultGenres is the genre affinity used when no mood rule matches.
	DefaultGenres []string `koanf:"default_genres"`

	// Spotify client-credentials app.
	SpotifyClientID     string `koanf:"spotify_client_id" validate:"required_if=CatalogProvider spotify"`
	SpotifyClientSecret string `koanf:"spotify_client_secret" validate:"required_if=CatalogProvider spotify"`
	SpotifyTokenURL     string `koanf:"spotify_token_url" validate:"required_if=CatalogProvider spotify,omitempty,url"`
	SpotifyAPIURL       string `koanf:"spotify_api_url" validate:"required_if=CatalogProvider spotify,omitempty,url"`
	SpotifyMarket       string `koanf:"spotify_market"`

	// Geocoder (Nominatim-compatible).
	GeocoderURL       string  `koanf:"geocoder_url" validate:"required,url"`
	GeocoderUserAgent string  `koanf:"geocoder_user_agent" validate:"required"`
	GeocoderRPS       float64 `koanf:"geocoder_rps" validate:"gte=0"`

	// WeatherURL points at an Open-Meteo compatible API.
	WeatherURL string `koanf:"weather_url" validate:"required,url"`

	// Outbound call policy shared by all collaborators.
	UpstreamTimeoutMS  int `koanf:"upstream_timeout_ms" validate:"gt=0"`
	UpstreamMaxRetries int `koanf:"upstream_max_retries" validate:"gte=1"`
	UpstreamBackoffMS  int `koanf:"upstream_backoff_ms" validate:"gte=0"`

	// Circuit breaker per collaborator.
	BreakerFailureThreshold int `koanf:"breaker_failure_threshold" validate:"gte=1"`
	BreakerOpenTimeoutMS    int `koanf:"breaker_open_timeout_ms" validate:"gt=0"`

	// Inbound HTTP policy. RateLimitRequests of 0 disables the limiter.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	RateLimitRequests  int      `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindowMS  int      `koanf:"rate_limit_window_ms" validate:"gt=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":3000",
		CatalogProvider:         ProviderStatic,
		DefaultAlbum:            "RevBeat Originals",
		DefaultGenres:           []string{"pop"},
		SpotifyTokenURL:         "https://accounts.spotify.com/api/token",
		SpotifyAPIURL:           "https://api.spotify.com/v1",
		GeocoderURL:             "https://nominatim.openstreetmap.org",
		GeocoderUserAgent:       "RevBeat-Project/1.0",
		GeocoderRPS:             1,
		WeatherURL:              "https://api.open-meteo.com/v1",
		UpstreamTimeoutMS:       10_000,
		UpstreamMaxRetries:      3,
		UpstreamBackoffMS:       500,
		BreakerFailureThreshold: 5,
		BreakerOpenTimeoutMS:    30_000,
		CORSAllowedOrigins:      []string{"*"},
		RateLimitRequests:       60,
		RateLimitWindowMS:       60_000,
	}
}

// UpstreamTimeout is the per-attempt outbound timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// UpstreamBackoff is the base retry backoff.
func (c *Config) UpstreamBackoff() time.Duration {
	return time.Duration(c.UpstreamBackoffMS) * time.Millisecond
}

// BreakerOpenTimeout is how long a tripped breaker stays open.
func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenTimeoutMS) * time.Millisecond
}

// RateLimitWindow is the inbound rate limit window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}
