package store

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"realty-workers/internal/common/metrics"
	"realty-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "listings:snapshot"

func (s *Store) cachedSnapshot(ctx context.Context) ([]models.Listing, bool) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return nil, false
	}

	val, err := s.cache.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			metrics.SnapshotCacheRequests.WithLabelValues("miss").Inc()
		} else {
			metrics.SnapshotCacheRequests.WithLabelValues("error").Inc()
			s.logger.Warn("snapshot cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}

	var listings []models.Listing
	if err := json.Unmarshal(val, &listings); err != nil {
		metrics.SnapshotCacheRequests.WithLabelValues("error").Inc()
		s.logger.Warn("snapshot cache entry corrupt", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	metrics.SnapshotCacheRequests.WithLabelValues("hit").Inc()
	return listings, true
}

func (s *Store) storeSnapshot(ctx context.Context, listings []models.Listing) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, snapshotKey, data, s.opts.CacheTTL).Err(); err != nil {
		s.logger.Warn("snapshot cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// invalidateSnapshot drops the cached snapshot after a listing write.
// View count increments do not invalidate.
func (s *Store) invalidateSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, snapshotKey).Err(); err != nil {
		s.logger.Warn("snapshot cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
