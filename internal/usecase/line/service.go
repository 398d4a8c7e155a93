package line

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aaisp/internal/domain"
	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
	logpkg "github.com/kailas-cloud/aaisp/internal/logger"
)

// Service serves line telemetry from the cache, fetching from CHAOS on a miss.
type Service struct {
	fetcher Fetcher
	cache   Cache
}

// New creates a line service.
func New(fetcher Fetcher, cache Cache) *Service {
	return &Service{fetcher: fetcher, cache: cache}
}

// Info fetches every line, replaces the cache and returns the fresh lines.
func (s *Service) Info(ctx context.Context) ([]domline.Line, error) {
	logpkg.FromContext(ctx).Debug("Fetching all service info")

	lines, err := s.fetcher.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch info: %w", err)
	}
	s.cache.Replace(lines)
	return lines, nil
}

// Services returns all service IDs, fetching only when nothing is cached yet.
func (s *Service) Services(ctx context.Context) ([]int, error) {
	if s.cache.Len() == 0 {
		if _, err := s.Info(ctx); err != nil {
			return nil, err
		}
	}
	return s.cache.IDs(), nil
}

// Lines returns all lines, fetching only when nothing is cached yet.
func (s *Service) Lines(ctx context.Context) ([]domline.Line, error) {
	if s.cache.Len() == 0 {
		return s.Info(ctx)
	}
	return s.cache.All(), nil
}

// Line returns one line. A cache miss triggers a single info fetch.
func (s *Service) Line(ctx context.Context, id int) (domline.Line, error) {
	log := logpkg.FromContext(ctx).With(zap.Int("service_id", id))

	if l, ok := s.cache.Get(id); ok {
		log.Debug("Cached info available")
		return l, nil
	}

	log.Debug("Info not cached, fetching")
	if _, err := s.Info(ctx); err != nil {
		return domline.Line{}, err
	}

	l, ok := s.cache.Get(id)
	if !ok {
		return domline.Line{}, fmt.Errorf("service %d: %w", id, domain.ErrServiceNotFound)
	}
	return l, nil
}

// Attr returns one attribute of a line. Missing or empty values are ErrAttributeMissing.
func (s *Service) Attr(ctx context.Context, id int, key string) (string, error) {
	l, err := s.Line(ctx, id)
	if err != nil {
		return "", err
	}
	v, ok := l.Attr(key)
	if !ok {
		logpkg.FromContext(ctx).Error("Attribute not found in response",
			zap.Int("service_id", id), zap.String("key", key))
		return "", fmt.Errorf("service %d: %s: %w", id, key, domain.ErrAttributeMissing)
	}
	return v, nil
}
