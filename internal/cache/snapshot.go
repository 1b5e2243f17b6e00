package cache

import (
	"context"
	"log"
	"time"

	"github.com/Hsnnder/real-estatemvp/internal/models"
)

// Snapshot is one cached read of the listing table.
type Snapshot struct {
	Listings []models.Listing `json:"listings"`
	StoredAt time.Time        `json:"stored_at"`
}

// SnapshotStore holds at most one snapshot per view.
type SnapshotStore interface {
	Load(ctx context.Context, view models.View) (*Snapshot, error)
	Save(ctx context.Context, view models.View, snap Snapshot, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// ListingCache is the read cache in front of the listing sheet. A ttl of zero
// disables it: every Get misses and Put stores nothing.
type ListingCache struct {
	store SnapshotStore
	ttl   time.Duration
	now   func() time.Time
}

// NewListingCache creates a cache over the given store.
func NewListingCache(store SnapshotStore, ttl time.Duration) *ListingCache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &ListingCache{store: store, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (c *ListingCache) WithClock(now func() time.Time) *ListingCache {
	c.now = now
	return c
}

// TTL returns the configured freshness window.
func (c *ListingCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the snapshot for view if it is younger than the ttl.
func (c *ListingCache) Get(ctx context.Context, view models.View) ([]models.Listing, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	snap, err := c.store.Load(ctx, view)
	if err != nil {
		log.Printf("Listing cache load for view %s failed: %v", view, err)
		return nil, false
	}
	if snap == nil || c.now().Sub(snap.StoredAt) >= c.ttl {
		return nil, false
	}
	return snap.Listings, true
}

// Put stores listings as the current snapshot for view.
func (c *ListingCache) Put(ctx context.Context, view models.View, listings []models.Listing) {
	if c.ttl <= 0 {
		return
	}
	snap := Snapshot{Listings: listings, StoredAt: c.now()}
	if err := c.store.Save(ctx, view, snap, c.ttl); err != nil {
		log.Printf("Listing cache save for view %s failed: %v", view, err)
	}
}

// Invalidate drops both snapshots.
func (c *ListingCache) Invalidate(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		log.Printf("Listing cache invalidation failed: %v", err)
	}
}
