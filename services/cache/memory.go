package cachesvc

import (
	"context"
	"sync"
	"time"

	"github.com/PeaceIshola/eduhub/core/entitlement"
)

// MemorySnapshotCache is an in-process SnapshotCache for development and
// tests. Entries expire lazily on read.
type MemorySnapshotCache struct {
	mu  sync.Mutex
	ttl time.Duration
	db  map[string]memoryEntry
}

type memoryEntry struct {
	snap      entitlement.Snapshot
	expiresAt time.Time
}

var _ entitlement.SnapshotCache = (*MemorySnapshotCache)(nil)

func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{ttl: ttl, db: make(map[string]memoryEntry)}
}

func (c *MemorySnapshotCache) GetSnapshot(ctx context.Context, userID string) (entitlement.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.db[userID]
	if !ok {
		return entitlement.Snapshot{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.db, userID)
		return entitlement.Snapshot{}, false, nil
	}
	return entry.snap, true, nil
}

func (c *MemorySnapshotCache) SetSnapshot(ctx context.Context, userID string, snap entitlement.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.db[userID] = memoryEntry{snap: snap, expiresAt: time.Now().Add(c.ttl)}
	return nil
}

func (c *MemorySnapshotCache) InvalidateUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.db, userID)
	return nil
}
