package inventory

import (
	"sync"

	"github.com/refriproject/refri-backend/pkg/enums"
)

// Store holds the in-memory snapshot of inventory items for the active
// session. It never touches persistence itself; the service replaces the
// snapshot after every fetch or mutation.
type Store struct {
	mu    sync.RWMutex
	items []Item
}

// NewStore builds an empty snapshot store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the full snapshot.
func (s *Store) Load(items []Item) {
	snapshot := make([]Item, len(items))
	copy(snapshot, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snapshot
}

// Clear empties the snapshot. Used when the session ends.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy of the current snapshot.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Item, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

// Len reports the snapshot size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Stats computes dashboard counts from the current snapshot.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Total: len(s.items)}
	for _, item := range s.items {
		switch {
		case item.Status == enums.FoodStatusFresh && item.Location == enums.FoodLocationFridge:
			stats.FridgeFreshCount++
		case item.Status == enums.FoodStatusFresh && item.Location == enums.FoodLocationPantry:
			stats.PantryFreshCount++
		case item.Status == enums.FoodStatusExpired:
			stats.ExpiredCount++
		}
	}
	return stats
}

// ExpiringSoon returns the items currently classified as expiring.
func (s *Store) ExpiringSoon() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiring := make([]Item, 0)
	for _, item := range s.items {
		if item.Status == enums.FoodStatusExpiring {
			expiring = append(expiring, item)
		}
	}
	return expiring
}
