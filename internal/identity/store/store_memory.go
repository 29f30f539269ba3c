package store

import (
	"context"
	"sync"

	"railguard/internal/identity"
	"railguard/pkg/domain"
	"railguard/pkg/platform/sentinel"
)

// MemoryStore keeps credentials in memory. It favors clarity over
// performance and backs development mode and unit tests.
type MemoryStore struct {
	mu          sync.RWMutex
	credentials map[domain.OwnerID]identity.Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{credentials: make(map[domain.OwnerID]identity.Credential)}
}

// Insert creates the owner's credential. The existence check and the write
// share the lock, so concurrent issuances resolve to exactly one winner.
func (s *MemoryStore) Insert(_ context.Context, credential *identity.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[credential.Owner]; ok {
		return sentinel.ErrConflict
	}
	s.credentials[credential.Owner] = *credential
	return nil
}

func (s *MemoryStore) Update(_ context.Context, credential *identity.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[credential.Owner]; !ok {
		return sentinel.ErrNotFound
	}
	s.credentials[credential.Owner] = *credential
	return nil
}

func (s *MemoryStore) FindByOwner(_ context.Context, owner domain.OwnerID) (*identity.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if credential, ok := s.credentials[owner]; ok {
		copied := credential
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}
