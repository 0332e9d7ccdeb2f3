package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repute/internal/platform/metrics"
	platformredis "repute/internal/platform/redis"
	"repute/pkg/domain"
)

// Cache is an optional Redis-backed read cache for score lookups. A nil
// *Cache is valid and caches nothing, so the engine runs unchanged without
// Redis configured. Entries are invalidated on every recompute of the same
// (domain, user), so the TTL only bounds staleness across processes.
type Cache struct {
	client  *platformredis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewCache wraps a Redis client. Returns nil when the client is nil.
func NewCache(client *platformredis.Client, ttl time.Duration, m *metrics.Metrics) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl, metrics: m}
}

func scoreKey(domainID domain.DomainID, user domain.Principal) string {
	return fmt.Sprintf("repute:score:%s:%s", domainID, user)
}

// Get returns the cached view for a user, if present.
func (c *Cache) Get(ctx context.Context, domainID domain.DomainID, user domain.Principal) (*ScoreView, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, scoreKey(domainID, user)).Bytes()
	if err != nil {
		c.metrics.IncScoreCacheMiss()
		return nil, false
	}
	var view ScoreView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false
	}
	c.metrics.IncScoreCacheHit()
	return &view, true
}

// Set stores a view after a read miss.
func (c *Cache) Set(ctx context.Context, view *ScoreView) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, scoreKey(view.Domain, view.User), raw, c.ttl).Err()
}

// Invalidate drops the cached view after a recompute.
func (c *Cache) Invalidate(ctx context.Context, domainID domain.DomainID, user domain.Principal) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, scoreKey(domainID, user)).Err()
}
