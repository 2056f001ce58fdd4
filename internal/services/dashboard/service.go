package dashboard

import (
	"context"
	"log"
	"time"

	"fintrivox/internal/metrics"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/repositories/cache"
)

const (
	StatsCacheKey = "dashboard:admin:stats"
	StatsCacheTTL = 60 * time.Second
)

type Service interface {
	// Stats returns platform-wide counters, served from cache for up to
	// StatsCacheTTL after each computation.
	Stats(ctx context.Context) (*models.AdminStats, error)
}

type service struct {
	statsRepo repositories.StatsRepository
	cache     cache.Store
	metrics   metrics.Collector
	now       func() time.Time
}

func NewService(statsRepo repositories.StatsRepository, store cache.Store, m metrics.Collector) Service {
	return &service{
		statsRepo: statsRepo,
		cache:     store,
		metrics:   metrics.OrNoop(m),
		now:       time.Now,
	}
}

func (s *service) Stats(ctx context.Context) (*models.AdminStats, error) {
	var cached models.AdminStats
	found, err := s.cache.Get(ctx, StatsCacheKey, &cached)
	if err != nil {
		log.Printf("Cache error for %s: %v", StatsCacheKey, err)
	}
	if found {
		s.metrics.RecordCacheHit("admin_stats")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss("admin_stats")

	stats, err := s.statsRepo.AdminStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = s.now().UTC()

	if err := s.cache.SetWithTTL(ctx, StatsCacheKey, stats, StatsCacheTTL); err != nil {
		log.Printf("Failed to cache admin stats: %v", err)
	}
	return stats, nil
}
