package audit

import (
	"context"
	"sync"

	"railguard/pkg/domain"
)

// MemoryStore keeps audit events in memory for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByOwner returns events for one owner in append order.
func (s *MemoryStore) ListByOwner(_ context.Context, owner domain.OwnerID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Owner == owner {
			out = append(out, e)
		}
	}
	return out, nil
}
