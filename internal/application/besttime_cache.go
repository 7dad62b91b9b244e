package application

import (
	"sync"
	"time"

	"github.com/example/plantogether/internal/availability"
)

// bestTimeCache stores recently computed meeting time proposals so that
// repeated reads of an unchanged event skip the aggregation pass. Entries are
// keyed by event ID and dropped on every membership or availability write.
type bestTimeCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]bestTimeCacheEntry
}

type bestTimeCacheEntry struct {
	result    availability.BestTime
	expiresAt time.Time
}

func newBestTimeCache(ttl time.Duration, maxEntries int, now func() time.Time) *bestTimeCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &bestTimeCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]bestTimeCacheEntry),
	}
}

func (c *bestTimeCache) Get(eventID string) (availability.BestTime, bool) {
	if c == nil {
		return availability.BestTime{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[eventID]
	c.mu.RUnlock()
	if !ok {
		return availability.BestTime{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, eventID)
		c.mu.Unlock()
		return availability.BestTime{}, false
	}
	return entry.result, true
}

func (c *bestTimeCache) Store(eventID string, result availability.BestTime) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[eventID] = bestTimeCacheEntry{result: result, expiresAt: expiry}
}

// Invalidate drops the cached proposal for a single event.
func (c *bestTimeCache) Invalidate(eventID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, eventID)
	c.mu.Unlock()
}

func (c *bestTimeCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *bestTimeCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
