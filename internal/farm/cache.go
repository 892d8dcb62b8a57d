package farm

import (
	"context"
	"sync"
	"time"

	"yqhp/farm-submit/pkg/types"
)

// DefaultCacheTTL is how long scheduling-class lists stay fresh. Farms
// change pools and groups rarely, so a short TTL mostly saves round
// trips during interactive submission.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	info    *types.ServerInfo
	fetched time.Time
}

// ServerInfoCache memoizes ServerInfo per farm URL with a TTL.
type ServerInfoCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*cacheEntry
}

// NewServerInfoCache creates a cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewServerInfoCache(ttl time.Duration) *ServerInfoCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ServerInfoCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the cached ServerInfo for the client's farm, fetching it
// when missing or stale.
func (c *ServerInfoCache) Get(ctx context.Context, client *Client) (*types.ServerInfo, error) {
	key := client.URL()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetched) < c.ttl {
		info := entry.info
		c.mu.Unlock()
		return info, nil
	}
	c.mu.Unlock()

	info, err := client.ServerInfo(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{info: info, fetched: c.now()}
	c.mu.Unlock()
	return info, nil
}

// Invalidate drops the cached entry for one farm URL.
func (c *ServerInfoCache) Invalidate(url string) {
	c.mu.Lock()
	delete(c.entries, url)
	c.mu.Unlock()
}
