package cache

import (
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Item wraps cached data with its expiry.
type Item struct {
	Data      interface{}
	ExpiresAt time.Time
}

// TTLCache is a small process-local LRU with per-entry TTL. It backs
// best-effort concerns like reset-mail rate limiting; nothing correctness
// critical lives here, and in particular the per-request batch loaders never
// touch it.
type TTLCache struct {
	lruCache *lru.Cache[string, Item]
}

var (
	instance *TTLCache
	once     sync.Once
)

// Get returns the singleton cache instance.
func Get() *TTLCache {
	once.Do(func() {
		l, err := lru.New[string, Item](500)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		instance = &TTLCache{lruCache: l}
	})
	return instance
}

// Set stores data under key for ttl.
func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, Item{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// GetValue returns the cached data, or nil if absent or expired.
func (c *TTLCache) GetValue(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.Data
}

// Delete drops the entry for key.
func (c *TTLCache) Delete(key string) {
	c.lruCache.Remove(key)
}
