package probe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/revbeat/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile, format string) (io.Closer, error) {
	if logFile == "" {
		logFile = "probe_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Configure(logger.Options{Format: format, Writer: io.MultiWriter(os.Stdout, file)}); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`RevBeat Probe
=============

Fires a city x mood x localTime x duration matrix at /api/recommend and
checks every playlist: status 200, track count within the duration budget,
targets within [0,1], seed genres present.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string          Base URL of the service (default "http://localhost:3000")
  -cities string       Comma-separated cities
  -moods string        Comma-separated moods
  -times string        Comma-separated HH:MM local times
  -durations string    Comma-separated minutes
  -concurrency int     Requests in flight (default 8)
  -timeout duration    Per-request timeout (default 15s)
  -output string       Results file (default: probe_results_TIMESTAMP.json)
  -log string          Log file (default: probe_log_TIMESTAMP.log)
  -log-format string   text or json (default "text")
  -verbose             Log every case
  -help                Show this help message

Examples:
  go run ./cmd/probe -cities Jakarta,Oslo -moods "chill,party" -durations 10,60
`)
}
