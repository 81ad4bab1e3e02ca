// internal/acquisition/cache.go
package acquisition

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"nil-matching/internal/common/logger"
	"nil-matching/internal/models"
)

const cacheKeyPrefix = "nil:profile:"

// CacheStats receives hit/miss observations.
type CacheStats interface {
	ObserveCache(kind string, hit bool)
}

type nopStats struct{}

func (nopStats) ObserveCache(string, bool) {}

// CachedSource is a cache-aside wrapper over another Source. Single-profile
// lookups are cached for ttl; listings always go to the inner source. A
// failing cache never fails a lookup.
type CachedSource struct {
	inner Source
	rdb   redis.Cmdable
	ttl   time.Duration
	log   logger.Logger
	stats CacheStats
}

func NewCachedSource(inner Source, rdb redis.Cmdable, ttl time.Duration, log logger.Logger, stats CacheStats) *CachedSource {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if stats == nil {
		stats = nopStats{}
	}
	return &CachedSource{inner: inner, rdb: rdb, ttl: ttl, log: log, stats: stats}
}

func CacheKey(kind, id string) string {
	return cacheKeyPrefix + kind + ":" + id
}

func (c *CachedSource) GetSubject(ctx context.Context, id string) (*models.AthleteProfile, error) {
	return cached(ctx, c, KindAthlete, id, c.inner.GetSubject)
}

func (c *CachedSource) GetBrand(ctx context.Context, id string) (*models.BrandProfile, error) {
	return cached(ctx, c, KindBrand, id, c.inner.GetBrand)
}

func (c *CachedSource) GetCampaign(ctx context.Context, id string) (*models.CampaignBrief, error) {
	return cached(ctx, c, KindCampaign, id, c.inner.GetCampaign)
}

func (c *CachedSource) ListSubjects(ctx context.Context, q SubjectQuery) ([]models.AthleteProfile, error) {
	return c.inner.ListSubjects(ctx, q)
}

// Invalidate drops one cached profile.
func (c *CachedSource) Invalidate(ctx context.Context, kind, id string) error {
	return c.rdb.Del(ctx, CacheKey(kind, id)).Err()
}

func cached[T any](ctx context.Context, c *CachedSource, kind, id string, load func(context.Context, string) (*T, error)) (*T, error) {
	key := CacheKey(kind, id)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(data, &v); jsonErr == nil {
			c.stats.ObserveCache(kind, true)
			return &v, nil
		}
		c.log.Warn("dropping undecodable cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("profile cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	c.stats.ObserveCache(kind, false)

	v, err := load(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(v); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("profile cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return v, nil
}

var _ Source = (*CachedSource)(nil)
