package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache implements an in-memory TTL cache
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]*cacheItem
	stats  Stats
	stopCh chan struct{}
	wg     sync.WaitGroup
}

type cacheItem struct {
	value  []byte
	expiry time.Time
}

// NewMemoryCache creates a new in-memory cache with a background janitor
// that evicts expired entries.
func NewMemoryCache() *MemoryCache {
	mc := &MemoryCache{
		items:  make(map[string]*cacheItem),
		stopCh: make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.janitor()

	return mc
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	if !exists || time.Now().After(item.expiry) {
		atomic.AddInt64(&mc.stats.Misses, 1)
		return nil, false
	}

	atomic.AddInt64(&mc.stats.Hits, 1)
	return item.value, true
}

// Set stores a value in the cache with a TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}

	mc.mu.Lock()
	mc.items[key] = &cacheItem{value: value, expiry: time.Now().Add(ttl)}
	mc.mu.Unlock()

	atomic.AddInt64(&mc.stats.Sets, 1)
	return nil
}

// Delete removes a value from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	delete(mc.items, key)
	mc.mu.Unlock()
	return nil
}

// Stats returns cache counters since startup
func (mc *MemoryCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&mc.stats.Hits),
		Misses: atomic.LoadInt64(&mc.stats.Misses),
		Sets:   atomic.LoadInt64(&mc.stats.Sets),
	}
}

// Stop shuts down the janitor goroutine
func (mc *MemoryCache) Stop() {
	close(mc.stopCh)
	mc.wg.Wait()
}

// janitor removes expired items periodically
func (mc *MemoryCache) janitor() {
	defer mc.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			mc.mu.Lock()
			for key, item := range mc.items {
				if now.After(item.expiry) {
					delete(mc.items, key)
				}
			}
			mc.mu.Unlock()
		case <-mc.stopCh:
			return
		}
	}
}
