package cache

import (
	"sync"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

// MarkerCache keeps each plan's marker list in memory so repeated reads
// skip the database. Any marker mutation on a plan invalidates its
// entry.
type MarkerCache struct {
	mu      sync.RWMutex
	markers map[string][]core.Marker // plan UUID -> markers
}

// NewMarkerCache creates an empty marker cache.
func NewMarkerCache() *MarkerCache {
	return &MarkerCache{
		markers: make(map[string][]core.Marker),
	}
}

// Get returns a copy of the cached marker list for a plan.
func (c *MarkerCache) Get(planUUID string) ([]core.Marker, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.markers[planUUID]
	if !ok {
		return nil, false
	}
	out := make([]core.Marker, len(cached))
	copy(out, cached)
	return out, true
}

// Set stores a plan's marker list. The cache keeps its own copy.
func (c *MarkerCache) Set(planUUID string, markers []core.Marker) {
	stored := make([]core.Marker, len(markers))
	copy(stored, markers)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers[planUUID] = stored
}

// Invalidate drops a plan's cached marker list.
func (c *MarkerCache) Invalidate(planUUID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.markers, planUUID)
}

// Reset clears all cached marker lists.
func (c *MarkerCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers = make(map[string][]core.Marker)
}
