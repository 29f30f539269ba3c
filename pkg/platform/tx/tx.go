// Package tx carries a SQL transaction through context so the stores called
// inside an owner transaction join it instead of opening their own. The
// ledger's TxRunner is the only writer; stores only read.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx returns a context carrying the owner transaction. A nil tx leaves
// the context untouched.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From reports the carried transaction, if any. Stores fall back to their
// plain connection when none is present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
