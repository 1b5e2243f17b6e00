package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Hsnnder/real-estatemvp/internal/models"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[models.View]Snapshot
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[models.View]Snapshot, 2)}
}

func (s *MemoryStore) Load(_ context.Context, view models.View) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[view]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *MemoryStore) Save(_ context.Context, view models.View, snap Snapshot, _ time.Duration) error {
	s.mu.Lock()
	s.snaps[view] = snap
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.snaps = make(map[models.View]Snapshot, 2)
	s.mu.Unlock()
	return nil
}
