// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
//
// A recommendation runs strictly in order: geocode the city, read the current
// weather there, derive the target vector, size the playlist from the trip
// duration, fetch candidate tracks and rank them. The first collaborator that
// fails aborts the request with a StageError.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/revbeat/internal/adapters/catalog"
	"github.com/okian/revbeat/internal/adapters/geocode"
	"github.com/okian/revbeat/internal/adapters/weather"
	"github.com/okian/revbeat/internal/domain/scoring"
	"github.com/okian/revbeat/internal/domain/targets"
	"github.com/okian/revbeat/internal/domain/types"
	"github.com/okian/revbeat/pkg/logger"
	"github.com/okian/revbeat/pkg/metrics"
)

// Geocoder resolves a city name.
type Geocoder interface {
	Lookup(ctx context.Context, city string) (geocode.Location, error)
}

// WeatherProvider reads current weather at a point.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (weather.Current, error)
}

// BreakerReporter exposes an outbound client's circuit state.
type BreakerReporter interface {
	Name() string
	BreakerState() string
}

// Request is one recommendation query.
type Request struct {
	City            string
	Mood            string
	LocalTime       string
	DurationMinutes int
}

// Service implements the API dependencies for the recommender.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	geocoder Geocoder
	weather  WeatherProvider
	catalog  catalog.Provider
	breakers []BreakerReporter

	// Configuration
	deriver      *targets.Deriver
	defaultAlbum string

	// State
	startedAt time.Time
	served    atomic.Int64
	failed    atomic.Int64
	lastRule  string

	// Logging
	logger logger.Logger
}

// New constructs a Service around its three collaborators.
func New(geo Geocoder, wx WeatherProvider, cat catalog.Provider, opts ...Option) *Service {
	s := &Service{
		geocoder:     geo,
		weather:      wx,
		catalog:      cat,
		deriver:      targets.NewDeriver(),
		defaultAlbum: "RevBeat Originals",
		startedAt:    time.Now(),
		lastRule:     targets.NoRule,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Recommend resolves the listening context and returns a ranked playlist.
func (s *Service) Recommend(ctx context.Context, req Request) (types.Recommendation, error) {
	if err := req.validate(); err != nil {
		return types.Recommendation{}, err
	}
	start := time.Now()

	rec, err := s.recommend(ctx, req)
	if err != nil {
		s.failed.Add(1)
		var se *StageError
		if errors.As(err, &se) {
			metrics.RecordStageFailure(string(se.Stage))
		}
		s.logger.Error(ctx, "recommendation failed",
			logger.String("city", req.City),
			logger.String("mood", req.Mood),
			logger.Error(err),
		)
		return types.Recommendation{}, err
	}

	s.served.Add(1)
	metrics.RecordRecommendationLatency(float64(time.Since(start).Microseconds()) / 1000)
	return rec, nil
}

func (s *Service) recommend(ctx context.Context, req Request) (types.Recommendation, error) {
	loc, err := s.geocoder.Lookup(ctx, req.City)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrLocationNotFound, err)
		}
		return types.Recommendation{}, &StageError{Stage: StageLocation, Err: err}
	}

	cur, err := s.weather.Current(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return types.Recommendation{}, &StageError{Stage: StageWeather, Err: err}
	}

	trace := s.deriver.Trace(cur.Code, req.Mood, req.LocalTime)
	target := trace.Targets
	count := scoring.TrackCount(float64(req.DurationMinutes))

	candidates, err := s.catalog.Tracks(ctx, target, count)
	if err != nil {
		return types.Recommendation{}, &StageError{Stage: StageCatalog, Err: err}
	}
	metrics.UpdateCatalogSize(len(candidates))

	ranked := scoring.Rank(target, candidates, count)

	views := make([]types.TrackView, 0, len(ranked))
	for _, t := range ranked {
		album := t.Album
		if album == "" {
			album = s.defaultAlbum
		}
		var preview *string
		if t.PreviewURL != "" {
			p := t.PreviewURL
			preview = &p
		}
		views = append(views, types.TrackView{
			ID:         t.ID,
			Name:       t.Name,
			Artist:     t.Artist,
			Album:      album,
			Image:      t.Image,
			PreviewURL: preview,
			SpotifyURL: t.PlayURL,
		})
	}

	s.mu.Lock()
	s.lastRule = trace.MoodRule
	s.mu.Unlock()

	metrics.RecordRecommendation(trace.MoodRule, trace.Adverse, target.Valence, target.Energy, len(views))
	s.logger.Info(ctx, "recommendation served",
		logger.String("location", loc.DisplayName),
		logger.Int("weatherCode", cur.Code),
		logger.String("moodRule", trace.MoodRule),
		logger.Bool("night", trace.Night),
		logger.Float64("targetValence", target.Valence),
		logger.Float64("targetEnergy", target.Energy),
		logger.Int("requested", count),
		logger.Int("candidates", len(candidates)),
		logger.Int("tracks", len(views)),
	)

	return types.Recommendation{
		Context: types.Context{
			Location: loc.DisplayName,
			Weather:  types.Weather{Code: cur.Code, Temperature: cur.Temperature},
			Targets: types.Targets{
				TargetValence: target.Valence,
				TargetEnergy:  target.Energy,
				SeedGenres:    target.GenreAffinity,
			},
		},
		Tracks: views,
	}, nil
}

func (r Request) validate() error {
	var missing []string
	if strings.TrimSpace(r.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(r.Mood) == "" {
		missing = append(missing, "mood")
	}
	if strings.TrimSpace(r.LocalTime) == "" {
		missing = append(missing, "localTime")
	}
	if r.DurationMinutes <= 0 {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or invalid %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// CatalogProvider returns the name of the configured catalog provider.
func (s *Service) CatalogProvider() string {
	return s.catalog.Name()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	lastRule := s.lastRule
	s.mu.RUnlock()

	breakers := make(map[string]string, len(s.breakers))
	for _, b := range s.breakers {
		breakers[b.Name()] = b.BreakerState()
	}

	return map[string]interface{}{
		"uptimeSeconds":   int64(time.Since(s.startedAt).Seconds()),
		"served":          s.served.Load(),
		"failed":          s.failed.Load(),
		"catalogProvider": s.catalog.Name(),
		"lastMoodRule":    lastRule,
		"breakers":        breakers,
	}
}
