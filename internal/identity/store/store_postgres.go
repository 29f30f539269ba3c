package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"railguard/internal/identity"
	"railguard/pkg/domain"
	"railguard/pkg/platform/sentinel"
	txcontext "railguard/pkg/platform/tx"
)

// PostgresStore persists credentials in PostgreSQL. Insert is a plain INSERT
// against the owner primary key; a concurrent duplicate surfaces as a unique
// violation and is reported as sentinel.ErrConflict.
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

func (s *PostgresStore) Insert(ctx context.Context, credential *identity.Credential) error {
	query := `
		INSERT INTO credentials (owner_id, proof_hash, status, issued_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		credential.Owner.String(),
		credential.ProofHash.String(),
		string(credential.Status),
		credential.IssuedAt,
		credential.RevokedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, credential *identity.Credential) error {
	query := `
		UPDATE credentials
		SET status = $2, revoked_at = $3
		WHERE owner_id = $1
	`
	result, err := s.q(ctx).ExecContext(ctx, query,
		credential.Owner.String(),
		string(credential.Status),
		credential.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, owner domain.OwnerID) (*identity.Credential, error) {
	query := `
		SELECT owner_id, proof_hash, status, issued_at, revoked_at
		FROM credentials
		WHERE owner_id = $1
	`
	var (
		ownerID   string
		proofHash string
		status    string
		issuedAt  time.Time
		revokedAt sql.NullTime
	)
	err := s.q(ctx).QueryRowContext(ctx, query, owner.String()).
		Scan(&ownerID, &proofHash, &status, &issuedAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	hash, err := domain.ParseProofHash(proofHash)
	if err != nil {
		return nil, fmt.Errorf("decode stored proof hash: %w", err)
	}

	credential := &identity.Credential{
		Owner:     domain.OwnerID(ownerID),
		ProofHash: hash,
		Status:    identity.CredentialStatus(status),
		IssuedAt:  issuedAt,
	}
	if revokedAt.Valid {
		credential.RevokedAt = &revokedAt.Time
	}
	return credential, nil
}
