package upstream

import (
	"net/http"
	"time"

	"github.com/okian/revbeat/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (e.g. an oauth2 client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets the number of attempts and the base exponential backoff.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxRetries = attempts
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// WithBreaker sets the consecutive-failure threshold and the open-state timeout.
func WithBreaker(failures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		if failures > 0 {
			c.breakerFailures = failures
		}
		if openTimeout > 0 {
			c.breakerTimeout = openTimeout
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if key != "" {
			c.header.Set(key, value)
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
