package services

import (
	"context"
	"fmt"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/enrich"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	rediscache "github.com/oyster-ai/oyster-backend/internal/platform/redis"
)

type cachedVideoSearch struct {
	log   *logger.Logger
	next  enrich.VideoSearch
	cache rediscache.ResourceCache
}

// NewCachedVideoSearch puts a resource cache in front of next. Cache errors fall
// through to a direct search. With no cache, next is returned unchanged.
func NewCachedVideoSearch(log *logger.Logger, next enrich.VideoSearch, cache rediscache.ResourceCache) (enrich.VideoSearch, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if next == nil {
		return nil, fmt.Errorf("video search required")
	}
	if cache == nil {
		return next, nil
	}
	return &cachedVideoSearch{
		log:   log.With("service", "CachedVideoSearch"),
		next:  next,
		cache: cache,
	}, nil
}

func (s *cachedVideoSearch) Search(ctx context.Context, query string) ([]course.VideoResource, error) {
	cached, found, err := s.cache.Get(ctx, query)
	if err != nil {
		s.log.Warn("resource cache read failed", "error", err)
	} else if found {
		return cached, nil
	}

	resources, err := s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	// Empty results are not cached so a transient miss is retried next time.
	if len(resources) > 0 {
		if err := s.cache.Set(ctx, query, resources); err != nil {
			s.log.Warn("resource cache write failed", "error", err)
		}
	}
	return resources, nil
}
