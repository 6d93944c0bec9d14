package assets

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// DownloadCache memoizes staged scenes by normalized scene path.
// Concurrent requests for one key share a single in-flight batch. Successful
// batches are remembered; failed ones are evicted so a later call retries.
type DownloadCache struct {
	group singleflight.Group

	mu   sync.RWMutex
	done map[string]struct{}

	// Stats
	hits    int
	batches int
}

// NewDownloadCache creates an empty cache.
func NewDownloadCache() *DownloadCache {
	return &DownloadCache{
		done: make(map[string]struct{}),
	}
}

// Do runs fn for key unless key already succeeded or a run is in flight, in
// which case it waits for that run and returns its error.
func (c *DownloadCache) Do(key string, fn func() error) error {
	if c.Has(key) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return nil
	}

	_, err, _ := c.group.Do(key, func() (any, error) {
		// a batch may have finished between Has and Do
		if c.Has(key) {
			return nil, nil
		}

		c.mu.Lock()
		c.batches++
		c.mu.Unlock()

		if err := fn(); err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.done[key] = struct{}{}
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// Has reports whether key has been staged successfully.
func (c *DownloadCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.done[key]
	return ok
}

// Forget drops key so the next Do stages it again.
func (c *DownloadCache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.done, key)
}

// Clear clears the cache.
func (c *DownloadCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = make(map[string]struct{})
	c.hits = 0
	c.batches = 0
}

// Stats returns how many calls were served from memory and how many batches
// actually ran.
func (c *DownloadCache) Stats() (hits, batches int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.batches
}
