package identity

import (
	"context"
	"errors"
	"log/slog"

	"railguard/internal/audit"
	"railguard/internal/platform/metrics"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	"railguard/pkg/platform/sentinel"
	"railguard/pkg/requestcontext"
)

// Store persists credentials. Insert fails with sentinel.ErrConflict when the
// owner already has a credential, so one-credential-per-owner holds even when
// two issuances race; Update only touches existing rows.
type Store interface {
	Insert(ctx context.Context, credential *Credential) error
	Update(ctx context.Context, credential *Credential) error
	FindByOwner(ctx context.Context, owner domain.OwnerID) (*Credential, error)
}

// Service implements the identity registry operations.
type Service struct {
	store   Store
	auditor audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, auditor audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, auditor: auditor, logger: logger, metrics: m}
}

// Issue creates the owner's credential. A second issuance for the same owner
// fails with AlreadyRegistered while the existing credential is active;
// issuing over a revoked credential is also refused, because credentials are
// append-only and re-verification is a new-owner concern, not an overwrite.
func (s *Service) Issue(ctx context.Context, owner domain.OwnerID, proofHash domain.ProofHash) (*Credential, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}
	if proofHash.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "proof hash is required")
	}

	existing, err := s.store.FindByOwner(ctx, owner)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up credential")
	}
	if existing != nil {
		return nil, dErrors.New(dErrors.CodeAlreadyRegistered, "owner already has a credential")
	}

	credential := &Credential{
		Owner:     owner,
		ProofHash: proofHash,
		Status:    StatusActive,
		IssuedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Insert(ctx, credential); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeAlreadyRegistered, "owner already has a credential")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save credential")
	}

	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
	}
	s.emit(ctx, audit.Event{Owner: owner, Action: audit.ActionCredentialIssued})

	return credential, nil
}

// Revoke marks the owner's credential revoked. Idempotent: revoking an
// already revoked credential succeeds without a second state change. Stakes
// owned by the identity become ineligible for new rails immediately;
// existing rails are untouched (the kill switch handles those).
func (s *Service) Revoke(ctx context.Context, owner domain.OwnerID) error {
	if owner.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}

	credential, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up credential")
	}
	if credential.Status == StatusRevoked {
		return nil
	}

	now := requestcontext.Now(ctx)
	credential.Status = StatusRevoked
	credential.RevokedAt = &now
	if err := s.store.Update(ctx, credential); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke credential")
	}

	if s.metrics != nil {
		s.metrics.CredentialsRevoked.Inc()
	}
	s.emit(ctx, audit.Event{Owner: owner, Action: audit.ActionCredentialRevoked})

	return nil
}

// IsActive reports whether the owner holds an active credential.
func (s *Service) IsActive(ctx context.Context, owner domain.OwnerID) (bool, error) {
	credential, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up credential")
	}
	return credential.IsActive(), nil
}

// Get returns the owner's credential.
func (s *Service) Get(ctx context.Context, owner domain.OwnerID) (*Credential, error) {
	credential, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up credential")
	}
	return credential, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"owner", event.Owner,
			"error", err,
		)
	}
}
