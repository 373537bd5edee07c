// Package upstream is the shared outbound HTTP client used by every
// collaborator: per-attempt timeouts, retry with exponential backoff and
// Retry-After, a circuit breaker, JSON decoding, and upstream metrics.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/revbeat/pkg/logger"
	"github.com/okian/revbeat/pkg/metrics"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultMaxRetries      = 3
	defaultBackoff         = 500 * time.Millisecond
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second

	// maxBodyBytes bounds how much of a response is read into memory.
	maxBodyBytes = 8 << 20
)

// Outcome labels for upstream_requests_total.
const (
	OutcomeSuccess     = "success"
	OutcomeStatus      = "status_error"
	OutcomeTransport   = "transport_error"
	OutcomeDecode      = "decode_error"
	OutcomeBreakerOpen = "breaker_open"
	OutcomeCanceled    = "canceled"
)

// Client performs GET requests against one collaborator.
type Client struct {
	name   string
	http   *http.Client
	header http.Header

	timeout    time.Duration
	maxRetries int
	backoff    time.Duration

	breakerFailures uint32
	breakerTimeout  time.Duration
	breaker         *gobreaker.CircuitBreaker[[]byte]

	log logger.Logger
}

// New constructs a client for the named collaborator.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:            name,
		http:            &http.Client{},
		header:          make(http.Header),
		timeout:         defaultTimeout,
		maxRetries:      defaultMaxRetries,
		backoff:         defaultBackoff,
		breakerFailures: defaultBreakerFailures,
		breakerTimeout:  defaultBreakerTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Named("upstream." + name)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !tripsBreaker(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			_ = metrics.UpdateBreakerState(name, to.String())
			c.log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	_ = metrics.UpdateBreakerState(name, gobreaker.StateClosed.String())

	return c
}

// Name returns the collaborator name used in logs and metrics.
func (c *Client) Name() string { return c.name }

// BreakerState returns "closed", "half-open" or "open".
func (c *Client) BreakerState() string { return c.breaker.State().String() }

// GetJSON fetches endpoint with query and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	start := time.Now()
	outcome := OutcomeSuccess
	defer func() {
		metrics.RecordUpstreamRequest(c.name, outcome, float64(time.Since(start).Microseconds())/1000)
	}()

	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, target)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %s", ErrBreakerOpen, c.name)
		}
		outcome = classify(err)
		c.log.Error(ctx, "upstream call failed",
			logger.String("endpoint", endpoint),
			logger.String("outcome", outcome),
			logger.Error(err),
		)
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		outcome = OutcomeDecode
		return fmt.Errorf("%w: %s: %w", ErrDecode, c.name, err)
	}
	return nil
}

// fetch runs the attempt loop. Only transport errors, 429 and 5xx are retried.
func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: request canceled: %w", c.name, err)
		}

		body, retryAfter, err := c.attempt(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxRetries-1 {
			break
		}

		metrics.RecordUpstreamRetry(c.name)
		c.log.Warn(ctx, "retrying upstream call",
			logger.Int("attempt", attempt+1),
			logger.Int("maxAttempts", c.maxRetries),
			logger.Error(err),
		)

		backoff := c.backoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, fmt.Errorf("%s: request canceled: %w", c.name, err)
		}
	}

	if !retryable(lastErr) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%s: request failed after %d attempts: %w", c.name, c.maxRetries, lastErr)
}

func (c *Client) attempt(ctx context.Context, target string) ([]byte, time.Duration, error) {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, parseRetryAfter(resp), &StatusError{Collaborator: c.name, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, err
	}
	return body, 0, nil
}

func retryable(err error) bool {
	if err == nil || errors.Is(err, ErrRequest) {
		return false
	}
	if code := StatusCode(err); code != 0 {
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	return true
}

// tripsBreaker is false for caller-side problems (4xx other than 429, cancellation).
func tripsBreaker(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrRequest) {
		return false
	}
	if code := StatusCode(err); code != 0 {
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	return true
}

func classify(err error) string {
	switch {
	case errors.Is(err, ErrBreakerOpen):
		return OutcomeBreakerOpen
	case errors.Is(err, ErrStatus):
		return OutcomeStatus
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeTransport
	}
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
