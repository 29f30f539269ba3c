package store

import (
	"context"
	"sync"
	"time"

	"railguard/internal/rail"
	"railguard/pkg/domain"
	"railguard/pkg/platform/sentinel"
)

// MemoryStore keeps rails in an insertion-ordered slice with an ID index.
type MemoryStore struct {
	mu    sync.RWMutex
	rails []rail.Rail
	byID  map[domain.RailID]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[domain.RailID]int)}
}

func (s *MemoryStore) Insert(_ context.Context, r *rail.Rail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[r.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[r.ID] = len(s.rails)
	s.rails = append(s.rails, *r)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, r *rail.Rail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.rails[idx] = *r
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.RailID) (*rail.Rail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := s.rails[idx]
	return &copied, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, owner domain.OwnerID) ([]rail.Rail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rail.Rail
	for _, r := range s.rails {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByAgent(_ context.Context, agent domain.AgentID) ([]rail.Rail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rail.Rail
	for _, r := range s.rails {
		if r.Agent == agent {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountActiveByOwner(_ context.Context, owner domain.OwnerID, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.rails {
		if s.rails[i].Owner == owner && s.rails[i].IsActive(now) {
			count++
		}
	}
	return count, nil
}

// RevokeAllByOwner flips every active rail of the owner in one pass under
// the write lock. Already inactive rails are not counted.
func (s *MemoryStore) RevokeAllByOwner(_ context.Context, owner domain.OwnerID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for i := range s.rails {
		r := &s.rails[i]
		if r.Owner != owner || !r.IsActive(now) {
			continue
		}
		revokedAt := now
		r.Revoked = true
		r.RevokedAt = &revokedAt
		count++
	}
	return count, nil
}
