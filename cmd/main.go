package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/revbeat/internal/adapters/catalog"
	"github.com/okian/revbeat/internal/adapters/geocode"
	"github.com/okian/revbeat/internal/adapters/http/api"
	"github.com/okian/revbeat/internal/adapters/http/swagger"
	"github.com/okian/revbeat/internal/adapters/upstream"
	"github.com/okian/revbeat/internal/adapters/weather"
	app "github.com/okian/revbeat/internal/app"
	"github.com/okian/revbeat/internal/config"
	"github.com/okian/revbeat/internal/domain/targets"
	"github.com/okian/revbeat/pkg/logger"
	"github.com/okian/revbeat/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Collaborator names used in logs, metrics and /stats.
const (
	collaboratorGeocoder = "geocoder"
	collaboratorWeather  = "weather"
	collaboratorSpotify  = "spotify"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Configure(logger.Options{Format: cfg.LogFormat}); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, svc, err := newHandler(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		os.Exit(1)
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	serverErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("catalog", svc.CatalogProvider()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newHandler wires collaborators, the recommendation service and all routes
// behind the inbound middleware chain.
func newHandler(ctx context.Context, cfg *config.Config) (http.Handler, *app.Service, error) {
	policy := []upstream.Option{
		upstream.WithTimeout(cfg.UpstreamTimeout()),
		upstream.WithRetries(cfg.UpstreamMaxRetries, cfg.UpstreamBackoff()),
		upstream.WithBreaker(uint32(cfg.BreakerFailureThreshold), cfg.BreakerOpenTimeout()), //nolint:gosec // validated >= 1
	}

	geoAPI := upstream.New(collaboratorGeocoder, append(policy,
		upstream.WithHeader("User-Agent", cfg.GeocoderUserAgent))...)
	wxAPI := upstream.New(collaboratorWeather, policy...)
	breakers := []app.BreakerReporter{geoAPI, wxAPI}

	cat, spotifyAPI, err := newCatalog(ctx, cfg, policy)
	if err != nil {
		return nil, nil, err
	}
	if spotifyAPI != nil {
		breakers = append(breakers, spotifyAPI)
	}

	svc := app.New(
		geocode.New(geoAPI, cfg.GeocoderURL, geocode.WithRateLimit(cfg.GeocoderRPS)),
		weather.New(wxAPI, cfg.WeatherURL),
		cat,
		app.WithDeriver(targets.NewDeriver(targets.WithDefaultGenres(cfg.DefaultGenres))),
		app.WithDefaultAlbum(cfg.DefaultAlbum),
		app.WithBreakers(breakers...),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)

	handler := api.Wrap(mux, api.MiddlewareOptions{
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow(),
	})
	return handler, svc, nil
}

// newCatalog selects the track source. The upstream client is returned when
// one backs the catalog so its breaker shows up in /stats.
func newCatalog(ctx context.Context, cfg *config.Config, policy []upstream.Option) (catalog.Provider, *upstream.Client, error) {
	switch cfg.CatalogProvider {
	case config.ProviderSpotify:
		hc := catalog.ClientCredentialsHTTPClient(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyTokenURL, cfg.UpstreamTimeout())
		spotifyAPI := upstream.New(collaboratorSpotify, append(policy, upstream.WithHTTPClient(hc))...)
		return catalog.NewSpotify(spotifyAPI, cfg.SpotifyAPIURL, catalog.WithMarket(cfg.SpotifyMarket)), spotifyAPI, nil
	default:
		var (
			static *catalog.Static
			err    error
		)
		if cfg.CatalogFile != "" {
			static, err = catalog.LoadFile(cfg.CatalogFile)
		} else {
			static, err = catalog.Default()
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load static catalog: %w", err)
		}
		metrics.UpdateCatalogSize(static.Len())
		return static, nil, nil
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
