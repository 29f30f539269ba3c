package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"railguard/internal/stakeledger"
	"railguard/pkg/domain"
	"railguard/pkg/platform/sentinel"
	txcontext "railguard/pkg/platform/tx"
)

// PostgresStore persists stakes. FindByOwnerForUpdate issues SELECT ... FOR
// UPDATE so the stake row acts as the per-owner serialization point for the
// whole rail lifecycle.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, stake *stakeledger.Stake) error {
	query := `
		INSERT INTO stakes (owner_id, spending_limit, used_amount, accumulated_fees, active, staked_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id) DO UPDATE
		SET spending_limit   = EXCLUDED.spending_limit,
		    used_amount      = EXCLUDED.used_amount,
		    accumulated_fees = EXCLUDED.accumulated_fees,
		    active           = EXCLUDED.active,
		    staked_at        = EXCLUDED.staked_at,
		    expires_at       = EXCLUDED.expires_at
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		stake.Owner.String(),
		stake.SpendingLimit.Int64(),
		stake.UsedAmount.Int64(),
		stake.AccumulatedFees.Int64(),
		stake.Active,
		stake.StakedAt,
		stake.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save stake: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, owner domain.OwnerID) (*stakeledger.Stake, error) {
	return s.find(ctx, owner, false)
}

func (s *PostgresStore) FindByOwnerForUpdate(ctx context.Context, owner domain.OwnerID) (*stakeledger.Stake, error) {
	return s.find(ctx, owner, true)
}

func (s *PostgresStore) find(ctx context.Context, owner domain.OwnerID, forUpdate bool) (*stakeledger.Stake, error) {
	query := `
		SELECT owner_id, spending_limit, used_amount, accumulated_fees, active, staked_at, expires_at
		FROM stakes
		WHERE owner_id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		ownerID         string
		spendingLimit   int64
		usedAmount      int64
		accumulatedFees int64
		active          bool
		stakedAt        time.Time
		expiresAt       time.Time
	)
	err := s.q(ctx).QueryRowContext(ctx, query, owner.String()).
		Scan(&ownerID, &spendingLimit, &usedAmount, &accumulatedFees, &active, &stakedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find stake: %w", err)
	}

	return &stakeledger.Stake{
		Owner:           domain.OwnerID(ownerID),
		SpendingLimit:   domain.Amount(spendingLimit),
		UsedAmount:      domain.Amount(usedAmount),
		AccumulatedFees: domain.Amount(accumulatedFees),
		Active:          active,
		StakedAt:        stakedAt,
		ExpiresAt:       expiresAt,
	}, nil
}
