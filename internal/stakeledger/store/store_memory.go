package store

import (
	"context"
	"sync"

	"railguard/internal/stakeledger"
	"railguard/pkg/domain"
	"railguard/pkg/platform/sentinel"
)

// MemoryStore keeps stakes in memory. Row-level locking is not needed here;
// the owner mutex in the memory transaction runner serializes mutations.
type MemoryStore struct {
	mu     sync.RWMutex
	stakes map[domain.OwnerID]stakeledger.Stake
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stakes: make(map[domain.OwnerID]stakeledger.Stake)}
}

func (s *MemoryStore) Save(_ context.Context, stake *stakeledger.Stake) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stakes[stake.Owner] = *stake
	return nil
}

func (s *MemoryStore) FindByOwner(_ context.Context, owner domain.OwnerID) (*stakeledger.Stake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stake, ok := s.stakes[owner]; ok {
		copied := stake
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) FindByOwnerForUpdate(ctx context.Context, owner domain.OwnerID) (*stakeledger.Stake, error) {
	return s.FindByOwner(ctx, owner)
}
