package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Key derives the cache fingerprint for a digest request.
func Key(videoID, language, model string) string {
	return fmt.Sprintf("%s|%s|%s", videoID, language, model)
}

type entry struct {
	payload   interface{}
	expiresAt time.Time
}

// Cache is a TTL map for computed digest results. Instances are
// independent; construct one per server and inject it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the stored payload if present and unexpired. Stale entries
// are removed on access.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key, unconditionally replacing any prior entry.
func (c *Cache) Set(key string, payload interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		payload:   payload,
		expiresAt: c.now().Add(ttl),
	}
}

// Sweep removes every expired entry and returns the number removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper runs periodic sweeps until ctx is cancelled.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					logrus.WithField("removed", removed).Debug("Cache sweep completed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
