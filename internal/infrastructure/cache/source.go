package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// CachedSource is a domain.RecordSource that remembers successful upstream
// answers for a fixed TTL. Failures are never cached. Cached values are
// shared between callers and must be treated as read-only.
type CachedSource struct {
	next   domain.RecordSource
	cache  *MemoryCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps next with a cache of the given TTL.
func NewCachedSource(next domain.RecordSource, cache *MemoryCache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, cache: cache, ttl: ttl, logger: logger}
}

// SearchRecords returns a cached page when one is live, else asks next.
func (s *CachedSource) SearchRecords(ctx context.Context, query string, page int, dataType string, pageSize int) (*domain.SearchPage, error) {
	key := searchKey(query, page, dataType, pageSize)
	if v, ok := s.cache.Get(key); ok {
		if cached, ok := v.(*domain.SearchPage); ok {
			s.logger.Debug("search cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	result, err := s.next.SearchRecords(ctx, query, page, dataType, pageSize)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result, s.ttl)
	return result, nil
}

// GetDetailRecord returns a cached record when one is live, else asks next.
func (s *CachedSource) GetDetailRecord(ctx context.Context, fdcID int64) (*domain.RawFoodRecord, error) {
	key := fmt.Sprintf("detail:%d", fdcID)
	if v, ok := s.cache.Get(key); ok {
		if cached, ok := v.(*domain.RawFoodRecord); ok {
			s.logger.Debug("detail cache hit", zap.Int64("fdc_id", fdcID))
			return cached, nil
		}
	}

	rec, err := s.next.GetDetailRecord(ctx, fdcID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, rec, s.ttl)
	return rec, nil
}

// searchKey normalizes the query so that case and surrounding whitespace do
// not split cache entries. FDC search is case-insensitive.
func searchKey(query string, page int, dataType string, pageSize int) string {
	return fmt.Sprintf("search:%s:%d:%d:%s", dataType, page, pageSize, strings.ToLower(strings.TrimSpace(query)))
}
