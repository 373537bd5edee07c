package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/revbeat/internal/domain/scoring"
	"github.com/okian/revbeat/internal/domain/types"
	"github.com/okian/revbeat/pkg/logger"
)

const maxBodyBytes = 4 << 20

// httpClient wraps http.Client with the probe's base URL and run id.
type httpClient struct {
	client  *http.Client
	baseURL string
	runID   string
}

func newHTTPClient(baseURL, runID string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		runID:   runID,
	}
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values, caseID string) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", c.runID+"-"+caseID)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// healthy checks GET /healthz.
func (c *httpClient) healthy(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz", nil, "health")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer closeBody(ctx, resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// recommend runs one case and verifies the response.
func (c *httpClient) recommend(ctx context.Context, idx int, tc Case) Result {
	res := Result{Case: tc, MaxTracks: scoring.TrackCount(float64(tc.Duration))}

	q := url.Values{}
	q.Set("city", tc.City)
	q.Set("mood", tc.Mood)
	q.Set("duration", strconv.Itoa(tc.Duration))
	q.Set("localTime", tc.LocalTime)

	start := time.Now()
	resp, err := c.get(ctx, "/api/recommend", q, strconv.Itoa(idx))
	res.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer closeBody(ctx, resp)
	res.Status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		res.Error = fmt.Sprintf("failed to read body: %v", err)
		return res
	}

	if resp.StatusCode != http.StatusOK {
		res.Violations = verify(tc, resp.StatusCode, nil)
		var e types.Error
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			res.Violations = append(res.Violations, "server error: "+e.Error)
		}
		return res
	}

	var rec types.Recommendation
	if err := json.Unmarshal(body, &rec); err != nil {
		res.Error = fmt.Sprintf("failed to decode body: %v", err)
		return res
	}
	res.Tracks = len(rec.Tracks)
	res.TargetValence = rec.Context.Targets.TargetValence
	res.TargetEnergy = rec.Context.Targets.TargetEnergy
	res.SeedGenres = rec.Context.Targets.SeedGenres
	res.Violations = verify(tc, resp.StatusCode, &rec)
	return res
}

func closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
	}
}
