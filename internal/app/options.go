package service

import (
	"github.com/okian/revbeat/internal/domain/targets"
	"github.com/okian/revbeat/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDeriver replaces the target deriver, e.g. to change default genres.
func WithDeriver(d *targets.Deriver) Option {
	return func(s *Service) {
		if d != nil {
			s.deriver = d
		}
	}
}

// WithDefaultAlbum sets the album label for tracks that carry none.
func WithDefaultAlbum(album string) Option {
	return func(s *Service) {
		if album != "" {
			s.defaultAlbum = album
		}
	}
}

// WithBreakers registers outbound clients whose circuit state GetStats reports.
func WithBreakers(b ...BreakerReporter) Option {
	return func(s *Service) {
		s.breakers = append(s.breakers, b...)
	}
}
