package api

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheSize = 64

// responseCache keeps raw response bodies for a short TTL. A nil
// *responseCache caches nothing.
type responseCache struct {
	lru *expirable.LRU[string, []byte]
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		return nil
	}
	return &responseCache{lru: expirable.NewLRU[string, []byte](cacheSize, nil, ttl)}
}

func (rc *responseCache) get(key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	return rc.lru.Get(key)
}

func (rc *responseCache) put(key string, raw []byte) {
	if rc == nil {
		return
	}
	rc.lru.Add(key, raw)
}

func (rc *responseCache) purge() {
	if rc == nil {
		return
	}
	rc.lru.Purge()
}

// getCached serves a GET from the cache under key, fetching and storing
// it on a miss.
func (c *Client) getCached(ctx context.Context, path, key string, out any) error {
	if raw, ok := c.cache.get(key); ok {
		return decode(path, raw, out)
	}
	raw, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := decode(path, raw, out); err != nil {
		return err
	}
	c.cache.put(key, raw)
	return nil
}

// InvalidateCache drops every cached response.
func (c *Client) InvalidateCache() {
	c.cache.purge()
}
