package ledger

import (
	"context"
	"sync"

	"railguard/pkg/domain"
)

// MemoryTxRunner serializes owner transactions with keyed mutexes. Paired
// with the in-memory stores; a lock is held for the full callback so reads
// inside the callback see no concurrent mutation for that owner.
type MemoryTxRunner struct {
	mu    sync.Mutex
	locks map[domain.OwnerID]*sync.Mutex
}

func NewMemoryTxRunner() *MemoryTxRunner {
	return &MemoryTxRunner{locks: make(map[domain.OwnerID]*sync.Mutex)}
}

func (r *MemoryTxRunner) ownerLock(owner domain.OwnerID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lock, ok := r.locks[owner]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	r.locks[owner] = lock
	return lock
}

// RunInOwnerTx runs fn while holding the owner's mutex.
func (r *MemoryTxRunner) RunInOwnerTx(ctx context.Context, owner domain.OwnerID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := r.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}
