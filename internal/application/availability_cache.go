package application

import (
	"strings"
	"sync"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

// availabilityCache stores recently computed available-resource listings to
// avoid re-scanning the ledger for identical queries while state remains
// unchanged. Every directory or ledger mutation invalidates it wholesale.
type availabilityCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]availabilityCacheEntry
}

type availabilityCacheEntry struct {
	resources []persistence.Resource
	expiresAt time.Time
}

func newAvailabilityCache(ttl time.Duration, maxEntries int, now func() time.Time) *availabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &availabilityCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]availabilityCacheEntry),
	}
}

func (c *availabilityCache) Get(key string) ([]persistence.Resource, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return append([]persistence.Resource(nil), entry.resources...), true
}

func (c *availabilityCache) Store(key string, resources []persistence.Resource) {
	if c == nil {
		return
	}
	cloned := append([]persistence.Resource(nil), resources...)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = availabilityCacheEntry{resources: cloned, expiresAt: expiry}
}

func (c *availabilityCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]availabilityCacheEntry)
	c.mu.Unlock()
}

func (c *availabilityCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *availabilityCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func buildAvailabilityCacheKey(kind persistence.ResourceKind, start, end time.Time) string {
	builder := strings.Builder{}
	builder.WriteString(string(kind))
	builder.WriteString("|")
	builder.WriteString(start.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(end.UTC().Format(time.RFC3339Nano))
	return builder.String()
}
