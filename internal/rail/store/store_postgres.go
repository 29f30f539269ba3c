package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"railguard/internal/rail"
	"railguard/pkg/domain"
	"railguard/pkg/platform/sentinel"
	txcontext "railguard/pkg/platform/tx"
)

// PostgresStore persists rails. The seq column (BIGSERIAL) preserves
// insertion order; issued_at alone cannot, because rails issued in one
// request share the request timestamp. RevokeAllByOwner is one UPDATE so the
// kill switch is a single atomic statement inside the owner transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const railColumns = "id, owner_id, agent_id, spending_limit, used_amount, fee, revoked, issued_at, expires_at, revoked_at"

func (s *PostgresStore) Insert(ctx context.Context, r *rail.Rail) error {
	query := `
		INSERT INTO rails (` + railColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		r.Owner.String(),
		r.Agent.String(),
		r.SpendingLimit.Int64(),
		r.UsedAmount.Int64(),
		r.Fee.Int64(),
		r.Revoked,
		r.IssuedAt,
		r.ExpiresAt,
		r.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rail: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, r *rail.Rail) error {
	query := `
		UPDATE rails
		SET used_amount = $2, revoked = $3, revoked_at = $4
		WHERE id = $1
	`
	result, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(r.ID), r.UsedAmount.Int64(), r.Revoked, r.RevokedAt)
	if err != nil {
		return fmt.Errorf("update rail: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rail: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RailID) (*rail.Rail, error) {
	query := `SELECT ` + railColumns + ` FROM rails WHERE id = $1`
	r, err := scanRail(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find rail: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.OwnerID) ([]rail.Rail, error) {
	query := `SELECT ` + railColumns + ` FROM rails WHERE owner_id = $1 ORDER BY seq`
	return s.list(ctx, query, owner.String())
}

func (s *PostgresStore) ListByAgent(ctx context.Context, agent domain.AgentID) ([]rail.Rail, error) {
	query := `SELECT ` + railColumns + ` FROM rails WHERE agent_id = $1 ORDER BY seq`
	return s.list(ctx, query, agent.String())
}

func (s *PostgresStore) CountActiveByOwner(ctx context.Context, owner domain.OwnerID, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM rails
		WHERE owner_id = $1 AND NOT revoked AND expires_at > $2
	`
	var count int
	if err := s.q(ctx).QueryRowContext(ctx, query, owner.String(), now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active rails: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) RevokeAllByOwner(ctx context.Context, owner domain.OwnerID, now time.Time) (int, error) {
	query := `
		UPDATE rails
		SET revoked = TRUE, revoked_at = $2
		WHERE owner_id = $1 AND NOT revoked AND expires_at > $2
	`
	result, err := s.q(ctx).ExecContext(ctx, query, owner.String(), now)
	if err != nil {
		return 0, fmt.Errorf("revoke all rails: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke all rails: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]rail.Rail, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list rails: %w", err)
	}
	defer rows.Close()

	var out []rail.Rail
	for rows.Next() {
		r, err := scanRail(rows)
		if err != nil {
			return nil, fmt.Errorf("list rails: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rails: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRail(row scanner) (*rail.Rail, error) {
	var (
		id            uuid.UUID
		ownerID       string
		agentID       string
		spendingLimit int64
		usedAmount    int64
		fee           int64
		revoked       bool
		issuedAt      time.Time
		expiresAt     time.Time
		revokedAt     sql.NullTime
	)
	if err := row.Scan(&id, &ownerID, &agentID, &spendingLimit, &usedAmount, &fee, &revoked, &issuedAt, &expiresAt, &revokedAt); err != nil {
		return nil, err
	}

	r := &rail.Rail{
		ID:            domain.RailID(id),
		Owner:         domain.OwnerID(ownerID),
		Agent:         domain.AgentID(agentID),
		SpendingLimit: domain.Amount(spendingLimit),
		UsedAmount:    domain.Amount(usedAmount),
		Fee:           domain.Amount(fee),
		Revoked:       revoked,
		IssuedAt:      issuedAt,
		ExpiresAt:     expiresAt,
	}
	if revokedAt.Valid {
		r.RevokedAt = &revokedAt.Time
	}
	return r, nil
}
