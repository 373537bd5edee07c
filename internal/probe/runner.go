package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/revbeat/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the probe: health check, the request matrix, verification,
// and the results file. It returns the report even when invariants fail,
// together with ErrViolations.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	cases := Matrix(cfg)
	if len(cases) == 0 {
		return nil, ErrEmptyMatrix
	}

	report := &Report{
		RunID:     uuid.NewString(),
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		StartedAt: time.Now(),
	}
	log := logger.Named("probe")
	log.Info(ctx, "starting revbeat probe",
		logger.String("runID", report.RunID),
		logger.String("baseURL", report.BaseURL),
		logger.Int("cases", len(cases)),
		logger.Int("concurrency", cfg.Concurrency),
		logger.String("timeout", cfg.Timeout.String()))

	client := newHTTPClient(report.BaseURL, report.RunID, cfg.Timeout)

	// Step 1: Check service health
	if err := client.healthy(ctx); err != nil {
		return nil, err
	}

	// Step 2: Fire the matrix
	results, err := execute(ctx, client, cases, cfg.Concurrency)
	if err != nil {
		return nil, err
	}
	report.Results = results
	report.Duration = time.Since(report.StartedAt)
	report.Stats = summarize(results)

	// Step 3: Report
	for _, r := range results {
		if !r.Passed() {
			log.Warn(ctx, "case failed",
				logger.Any("case", r.Case),
				logger.Int("status", r.Status),
				logger.Strings("violations", r.Violations),
				logger.String("error", r.Error))
		} else if cfg.Verbose {
			log.Info(ctx, "case passed",
				logger.Any("case", r.Case),
				logger.Int("tracks", r.Tracks),
				logger.Float64("latencyMs", r.LatencyMs))
		}
	}

	if err := saveReport(ctx, cfg.OutputFile, report); err != nil {
		log.Warn(ctx, "failed to save report", logger.Error(err))
	}
	displayFinalStats(ctx, report)

	if report.Stats.Failed+report.Stats.Errored > 0 {
		return report, fmt.Errorf("%w: %d of %d cases", ErrViolations, report.Stats.Failed+report.Stats.Errored, report.Stats.Cases)
	}
	return report, nil
}

// execute runs cases with bounded concurrency. Results keep matrix order.
func execute(ctx context.Context, client *httpClient, cases []Case, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]Result, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, tc := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = client.recommend(gctx, i, tc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("probe interrupted: %w", err)
	}
	return results, nil
}

// saveReport writes the report as indented JSON.
func saveReport(ctx context.Context, filename string, report *Report) error {
	if filename == "" {
		filename = "probe_results_" + report.StartedAt.Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, report *Report) {
	s := report.Stats
	var passRate, requestsPerSecond float64
	if s.Cases > 0 {
		passRate = float64(s.Passed) / float64(s.Cases) * PercentageMultiplier
	}
	if report.Duration > 0 {
		requestsPerSecond = float64(s.Cases) / report.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("runID", report.RunID),
		logger.Int("cases", s.Cases),
		logger.Int("passed", s.Passed),
		logger.Int("failed", s.Failed),
		logger.Int("errored", s.Errored),
		logger.Float64("avgLatencyMs", s.AvgLatencyMs),
		logger.Float64("maxLatencyMs", s.MaxLatencyMs),
		logger.String("duration", report.Duration.String()),
		logger.Float64("passRate", passRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
