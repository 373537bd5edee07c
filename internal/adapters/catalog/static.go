package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/okian/revbeat/internal/domain/model"
)

//go:embed data/default.json
var defaultCatalog []byte

// Format names a catalog file encoding.
type Format string

// Supported catalog encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Static serves a fixed track list. It ignores the target; the ranker does
// the filtering.
type Static struct {
	tracks []model.Track
}

// NewStatic validates tracks and wraps a private copy of them.
func NewStatic(tracks []model.Track) (*Static, error) {
	if len(tracks) == 0 {
		return nil, ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(tracks))
	for i, t := range tracks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidCatalog, i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return &Static{tracks: slices.Clone(tracks)}, nil
}

// Default returns the embedded catalog.
func Default() (*Static, error) {
	tracks, err := Parse(defaultCatalog, FormatJSON)
	if err != nil {
		return nil, err
	}
	return NewStatic(tracks)
}

// LoadFile reads a JSON or YAML catalog, choosing the decoder by extension.
func LoadFile(path string) (*Static, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	tracks, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewStatic(tracks)
}

// Parse decodes a list of tracks.
func Parse(data []byte, format Format) ([]model.Track, error) {
	var tracks []model.Track
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &tracks)
	case FormatYAML:
		err = yaml.Unmarshal(data, &tracks)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return tracks, nil
}

// Name implements Provider.
func (s *Static) Name() string { return "static" }

// Len returns the number of tracks.
func (s *Static) Len() int { return len(s.tracks) }

// Tracks implements Provider. The returned slice is the caller's to keep.
func (s *Static) Tracks(_ context.Context, _ model.TargetVector, _ int) ([]model.Track, error) {
	return slices.Clone(s.tracks), nil
}
