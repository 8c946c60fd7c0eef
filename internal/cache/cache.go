// Package cache persists the last activity history fetched from each node so
// repeat invocations render instantly and backups can archive a snapshot
// without touching the network.
package cache

import (
	"sync"
	"time"

	"github.com/lumenwallet/lumen/internal/activity"
)

// DefaultStaleness is how long a cached pool is trusted before the CLI goes
// back to the node for a fresh one.
const DefaultStaleness = 5 * time.Minute

// Cache is the contract the activity commands program against.
type Cache interface {
	Get(node string, kind activity.Kind) (*ActivityCacheEntry, bool, time.Duration)
	Set(entry ActivityCacheEntry)
	Delete(node string, kind activity.Kind)
	Clear()
	Size() int
	IsStale(node string, kind activity.Kind) bool
	IsStaleWithDuration(node string, kind activity.Kind, staleness time.Duration) bool
	GetAllForNode(node string) []ActivityCacheEntry
	Prune(maxAge time.Duration) int
}

var _ Cache = (*ActivityCache)(nil)

// ActivityCache holds one entry per node and item kind. Safe for concurrent
// use.
type ActivityCache struct {
	mu      sync.RWMutex                  `json:"-"`
	Entries map[string]ActivityCacheEntry `json:"entries"`
}

// ActivityCacheEntry is one node's item pool of a single kind.
type ActivityCacheEntry struct {
	Node      string          `json:"node"`
	Kind      activity.Kind   `json:"kind"`
	Items     []activity.Item `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Age returns how long ago the entry was stored.
func (e ActivityCacheEntry) Age() time.Duration {
	return time.Since(e.UpdatedAt)
}

// Key is the map key for a node and kind pair.
func Key(node string, kind activity.Kind) string {
	return node + ":" + string(kind)
}

// NewActivityCache returns an empty cache.
func NewActivityCache() *ActivityCache {
	return &ActivityCache{Entries: make(map[string]ActivityCacheEntry)}
}

// Get returns the entry for a node and kind, whether one exists, and its
// age.
func (c *ActivityCache) Get(node string, kind activity.Kind) (*ActivityCacheEntry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.Entries[Key(node, kind)]
	if !ok {
		return nil, false, 0
	}
	return &entry, true, entry.Age()
}

// Set stores entry under its node and kind, stamped with the current time.
func (c *ActivityCache) Set(entry ActivityCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.UpdatedAt = time.Now()
	c.Entries[Key(entry.Node, entry.Kind)] = entry
}

// Delete drops the entry for a node and kind, if present.
func (c *ActivityCache) Delete(node string, kind activity.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.Entries, Key(node, kind))
}

// Clear drops every entry.
func (c *ActivityCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries = make(map[string]ActivityCacheEntry)
}

// Size returns the number of stored entries.
func (c *ActivityCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.Entries)
}

// IsStale reports whether the entry for a node and kind is older than
// DefaultStaleness. A missing entry is stale.
func (c *ActivityCache) IsStale(node string, kind activity.Kind) bool {
	return c.IsStaleWithDuration(node, kind, DefaultStaleness)
}

// IsStaleWithDuration is IsStale with a caller-chosen threshold.
func (c *ActivityCache) IsStaleWithDuration(node string, kind activity.Kind, staleness time.Duration) bool {
	_, ok, age := c.Get(node, kind)
	return !ok || age > staleness
}

// GetAllForNode returns every cached entry for one node, across kinds.
func (c *ActivityCache) GetAllForNode(node string) []ActivityCacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var entries []ActivityCacheEntry
	for _, entry := range c.Entries {
		if entry.Node == node {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Prune drops entries older than maxAge and returns how many were removed.
func (c *ActivityCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, entry := range c.Entries {
		if time.Since(entry.UpdatedAt) > maxAge {
			delete(c.Entries, key)
			removed++
		}
	}
	return removed
}
