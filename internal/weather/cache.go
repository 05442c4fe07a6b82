package weather

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"pv-simulator/internal/model"
)

const DefaultCacheTTL = 30 * 24 * time.Hour

type cacheEntry struct {
	weather   *model.Weather
	expiresAt time.Time
}

// Cache keeps fetched weather in memory until its TTL runs out.
// A nil *Cache is valid and never hits.
type Cache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewCache starts a cache with a background sweep of expired entries; call Close to stop it.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		store: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.cleanup(5 * time.Minute)
	return c
}

// Get returns cached weather and its expiry. Callers must not mutate the result.
func (c *Cache) Get(key string) (*model.Weather, time.Time, bool) {
	if c == nil {
		return nil, time.Time{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, time.Time{}, false
	}
	return e.weather, e.expiresAt, true
}

func (c *Cache) Set(key string, w *model.Weather) time.Time {
	if c == nil {
		return time.Time{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	exp := c.now().Add(c.ttl)
	c.store[key] = &cacheEntry{weather: w, expiresAt: exp}
	return exp
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry)
}

func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
		}
	}
}

// CacheKey hashes coordinates rounded to 0.01° so nearby requests share an entry.
func CacheKey(lat, lon float64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("tmy:%.2f:%.2f", lat, lon)))
	return hex.EncodeToString(h[:])
}
