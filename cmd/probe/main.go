package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/okian/revbeat/internal/probe"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL     = flag.String("url", "http://localhost:3000", "Base URL of the service")
		cities      = flag.String("cities", "", "Comma-separated cities")
		moods       = flag.String("moods", "", "Comma-separated moods")
		times       = flag.String("times", "", "Comma-separated HH:MM local times")
		durations   = flag.String("durations", "", "Comma-separated trip lengths in minutes")
		concurrency = flag.Int("concurrency", probe.DefaultConcurrency, "Requests in flight at once")
		timeout     = flag.Duration("timeout", probe.DefaultTimeout, "Per-request timeout")
		outputFile  = flag.String("output", "", "Results file (default: probe_results_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file (default: probe_log_TIMESTAMP.log)")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		verbose     = flag.Bool("verbose", false, "Log every case")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return 0
	}

	minutes, err := parseDurations(*durations)
	if err != nil {
		_, _ = os.Stderr.WriteString("Invalid -durations: " + err.Error() + "\n")
		return 2
	}

	closer, err := probe.SetupLogging(*logFile, *logFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &probe.Config{
		BaseURL:     *baseURL,
		Cities:      probe.SplitList(*cities),
		Moods:       probe.SplitList(*moods),
		LocalTimes:  probe.SplitList(*times),
		Durations:   minutes,
		Concurrency: *concurrency,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if _, err := probe.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}

func parseDurations(s string) ([]int, error) {
	parts := probe.SplitList(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
