package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"

	"github.com/okian/revbeat/internal/adapters/upstream"
	"github.com/okian/revbeat/internal/domain/model"
	"github.com/okian/revbeat/pkg/logger"
)

const (
	maxSeedGenres      = 5
	maxRecommendations = 100
	maxArtistsPerCall  = 50
	maxFeaturesPerCall = 100
)

// Wire shapes of the Web API responses this provider reads.
type (
	spotifyImage struct {
		URL string `json:"url"`
	}
	spotifyArtist struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Genres []string `json:"genres"`
	}
	spotifyTrack struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Artists []spotifyArtist `json:"artists"`
		Album   struct {
			Name   string         `json:"name"`
			Images []spotifyImage `json:"images"`
		} `json:"album"`
		PreviewURL   *string `json:"preview_url"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	}
	recommendationsResponse struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	audioFeatures struct {
		ID           string  `json:"id"`
		Valence      float64 `json:"valence"`
		Energy       float64 `json:"energy"`
		Danceability float64 `json:"danceability"`
		Tempo        float64 `json:"tempo"`
	}
	audioFeaturesResponse struct {
		AudioFeatures []*audioFeatures `json:"audio_features"`
	}
	artistsResponse struct {
		Artists []*spotifyArtist `json:"artists"`
	}
)

// Spotify asks the recommendations API for tracks near the target and
// enriches them with audio features and artist genres.
type Spotify struct {
	api     *upstream.Client
	baseURL string
	market  string
	log     logger.Logger
}

// SpotifyOption applies a configuration option to the Spotify provider.
type SpotifyOption func(*Spotify)

// WithMarket restricts recommendations to an ISO 3166-1 market.
func WithMarket(market string) SpotifyOption {
	return func(s *Spotify) {
		s.market = strings.TrimSpace(market)
	}
}

// NewSpotify builds the provider. api must carry app credentials, see
// ClientCredentialsHTTPClient.
func NewSpotify(api *upstream.Client, baseURL string, opts ...SpotifyOption) *Spotify {
	s := &Spotify{
		api:     api,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Named("catalog.spotify"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClientCredentialsHTTPClient returns an HTTP client that fetches and renews an
// app access token and attaches it to every request.
func ClientCredentialsHTTPClient(ctx context.Context, clientID, clientSecret, tokenURL string, timeout time.Duration) *http.Client {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	// Token requests use their own bounded client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	return cfg.Client(ctx)
}

// Name implements Provider.
func (s *Spotify) Name() string { return "spotify" }

// Tracks implements Provider.
func (s *Spotify) Tracks(ctx context.Context, target model.TargetVector, count int) ([]model.Track, error) {
	limit := min(max(count, 1), maxRecommendations)
	seeds := target.GenreAffinity
	if len(seeds) > maxSeedGenres {
		seeds = seeds[:maxSeedGenres]
	}

	q := url.Values{}
	q.Set("seed_genres", strings.Join(seeds, ","))
	q.Set("target_valence", strconv.FormatFloat(target.Valence, 'f', -1, 64))
	q.Set("target_energy", strconv.FormatFloat(target.Energy, 'f', -1, 64))
	q.Set("limit", strconv.Itoa(limit))
	if s.market != "" {
		q.Set("market", s.market)
	}

	var rec recommendationsResponse
	if err := s.api.GetJSON(ctx, s.baseURL+"/recommendations", q, &rec); err != nil {
		return nil, err
	}
	if len(rec.Tracks) == 0 {
		return nil, nil
	}

	trackIDs := make([]string, 0, len(rec.Tracks))
	artistIDs := make([]string, 0, len(rec.Tracks))
	seenArtist := make(map[string]struct{}, len(rec.Tracks))
	for _, t := range rec.Tracks {
		trackIDs = append(trackIDs, t.ID)
		if len(t.Artists) == 0 || t.Artists[0].ID == "" {
			continue
		}
		if _, ok := seenArtist[t.Artists[0].ID]; !ok {
			seenArtist[t.Artists[0].ID] = struct{}{}
			artistIDs = append(artistIDs, t.Artists[0].ID)
		}
	}

	var (
		features map[string]*audioFeatures
		genres   map[string][]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		features, err = s.audioFeatures(gctx, trackIDs)
		return err
	})
	g.Go(func() error {
		var err error
		genres, err = s.artistGenres(gctx, artistIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tracks := make([]model.Track, 0, len(rec.Tracks))
	synthetic := 0
	for _, t := range rec.Tracks {
		var tg []string
		if len(t.Artists) > 0 {
			tg = genres[t.Artists[0].ID]
		}
		f, synth := featuresFor(t.ID, features[t.ID], tg)
		if synth {
			synthetic++
		}
		tracks = append(tracks, toTrack(t, f))
	}

	s.log.Debug(ctx, "fetched spotify recommendations",
		logger.Int("tracks", len(tracks)),
		logger.Int("syntheticFeatures", synthetic),
		logger.Strings("seeds", seeds),
	)
	return tracks, nil
}

// audioFeatures returns features by track id. A 403 or 404 from the endpoint
// yields an empty map so every track falls back to synthetic features.
func (s *Spotify) audioFeatures(ctx context.Context, ids []string) (map[string]*audioFeatures, error) {
	out := make(map[string]*audioFeatures, len(ids))
	for _, chunk := range chunks(ids, maxFeaturesPerCall) {
		var resp audioFeaturesResponse
		err := s.api.GetJSON(ctx, s.baseURL+"/audio-features", url.Values{"ids": {strings.Join(chunk, ",")}}, &resp)
		if unavailable(err) {
			s.log.Warn(ctx, "audio features unavailable, using synthetic features", logger.Error(err))
			return map[string]*audioFeatures{}, nil
		}
		if err != nil {
			return nil, err
		}
		for _, f := range resp.AudioFeatures {
			if f != nil && f.ID != "" {
				out[f.ID] = f
			}
		}
	}
	return out, nil
}

// artistGenres returns genres by artist id, with the same 403/404 leniency.
func (s *Spotify) artistGenres(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	for _, chunk := range chunks(ids, maxArtistsPerCall) {
		var resp artistsResponse
		err := s.api.GetJSON(ctx, s.baseURL+"/artists", url.Values{"ids": {strings.Join(chunk, ",")}}, &resp)
		if unavailable(err) {
			s.log.Warn(ctx, "artist genres unavailable", logger.Error(err))
			return map[string][]string{}, nil
		}
		if err != nil {
			return nil, err
		}
		for _, a := range resp.Artists {
			if a != nil && a.ID != "" {
				out[a.ID] = a.Genres
			}
		}
	}
	return out, nil
}

func unavailable(err error) bool {
	if err == nil || !errors.Is(err, upstream.ErrStatus) {
		return false
	}
	code := upstream.StatusCode(err)
	return code == http.StatusForbidden || code == http.StatusNotFound
}

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > 0 {
		n := min(size, len(ids))
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}

func toTrack(t spotifyTrack, f model.Features) model.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	var image string
	if len(t.Album.Images) > 0 {
		image = t.Album.Images[0].URL
	}
	var preview string
	if t.PreviewURL != nil {
		preview = *t.PreviewURL
	}
	return model.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     strings.Join(names, ", "),
		Album:      t.Album.Name,
		Image:      image,
		PlayURL:    t.ExternalURLs.Spotify,
		PreviewURL: preview,
		Features:   f,
	}
}
