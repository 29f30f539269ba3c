// Package ledger provides the per-owner transaction runners that serialize
// mutations against one owner's stake and rails. All mutating operations run
// inside RunInOwnerTx so that usedAmount never exceeds spendingLimit under
// concurrent requests and the kill switch observes a consistent rail set.
package ledger

import (
	"context"

	"railguard/pkg/domain"
)

// TxRunner executes fn inside a transaction scoped to one owner. Concurrent
// calls for the same owner serialize; calls for different owners proceed
// independently. fn receives a context that carries the transaction for
// store implementations that need it.
type TxRunner interface {
	RunInOwnerTx(ctx context.Context, owner domain.OwnerID, fn func(ctx context.Context) error) error
}
