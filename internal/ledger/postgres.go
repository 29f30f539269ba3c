package ledger

import (
	"context"
	"database/sql"
	"time"

	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	txcontext "railguard/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// PostgresTxRunner wraps fn in a SQL transaction. Owner serialization comes
// from the stake row lock: stores called inside fn take SELECT ... FOR UPDATE
// on the owner's stake, so two transactions touching the same owner queue on
// the row rather than racing.
type PostgresTxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTxRunner(db *sql.DB) *PostgresTxRunner {
	return &PostgresTxRunner{db: db}
}

func (r *PostgresTxRunner) RunInOwnerTx(ctx context.Context, owner domain.OwnerID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}
