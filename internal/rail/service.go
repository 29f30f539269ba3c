package rail

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"railguard/internal/audit"
	"railguard/internal/ledger"
	"railguard/internal/platform/metrics"
	"railguard/internal/stakeledger"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	"railguard/pkg/platform/sentinel"
	"railguard/pkg/requestcontext"
)

// Store persists rails. List results are insertion-ordered.
type Store interface {
	Insert(ctx context.Context, rail *Rail) error
	Update(ctx context.Context, rail *Rail) error
	FindByID(ctx context.Context, id domain.RailID) (*Rail, error)
	ListByOwner(ctx context.Context, owner domain.OwnerID) ([]Rail, error)
	ListByAgent(ctx context.Context, agent domain.AgentID) ([]Rail, error)
	CountActiveByOwner(ctx context.Context, owner domain.OwnerID, now time.Time) (int, error)
	RevokeAllByOwner(ctx context.Context, owner domain.OwnerID, now time.Time) (int, error)
}

// StakeLedger is the stake surface the issuer needs. Reserve and CreditFee
// are called inside the owner transaction the issuer opens.
type StakeLedger interface {
	Reserve(ctx context.Context, owner domain.OwnerID, amount domain.Amount) (*stakeledger.Reservation, error)
	CreditFee(ctx context.Context, owner domain.OwnerID, fee domain.Amount) error
	Get(ctx context.Context, owner domain.OwnerID) (*stakeledger.Stake, error)
}

// RevocationMarker is the kill-switch cache surface. A nil marker disables
// caching; the store remains authoritative either way.
type RevocationMarker interface {
	MarkOwnerRevoked(ctx context.Context, owner domain.OwnerID) error
}

// Anchorer mirrors a committed transition on-chain. Anchoring runs after the
// local commit and never unwinds ledger state.
type Anchorer interface {
	AnchorEvent(ctx context.Context, event audit.Event) (string, error)
}

// Service implements rail issuance, draws, and the kill switch.
type Service struct {
	store    Store
	stakes   StakeLedger
	runner   ledger.TxRunner
	schedule Schedule
	marker   RevocationMarker
	anchor   Anchorer
	auditor  audit.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(
	store Store,
	stakes StakeLedger,
	runner ledger.TxRunner,
	schedule Schedule,
	marker RevocationMarker,
	anchor Anchorer,
	auditor audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:    store,
		stakes:   stakes,
		runner:   runner,
		schedule: schedule,
		marker:   marker,
		anchor:   anchor,
		auditor:  auditor,
		logger:   logger,
		metrics:  m,
	}
}

// RequestCompliance reserves stake capacity, creates the rail, and credits
// the staker's fee share, all inside one owner transaction. Reserve failures
// propagate unchanged; nothing partial survives a failure.
func (s *Service) RequestCompliance(ctx context.Context, owner domain.OwnerID, agent domain.AgentID, amount domain.Amount, duration time.Duration) (*Rail, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}
	if agent.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "agent is required")
	}
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if duration <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "duration must be positive")
	}

	fee := s.schedule.Fee(amount)
	stakerShare, _ := s.schedule.Split(fee)
	now := requestcontext.Now(ctx)

	var rail *Rail
	err := s.runner.RunInOwnerTx(ctx, owner, func(ctx context.Context) error {
		reservation, err := s.stakes.Reserve(ctx, owner, amount)
		if err != nil {
			return err
		}

		expiresAt := now.Add(duration)
		if reservation.ExpiresAt.Before(expiresAt) {
			expiresAt = reservation.ExpiresAt
		}

		rail = &Rail{
			ID:            domain.NewRailID(),
			Owner:         owner,
			Agent:         agent,
			SpendingLimit: amount,
			Fee:           fee,
			IssuedAt:      now,
			ExpiresAt:     expiresAt,
		}
		if err := s.store.Insert(ctx, rail); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save rail")
		}
		if err := s.stakes.CreditFee(ctx, owner, stakerShare); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Owner:  owner,
			Agent:  agent,
			RailID: rail.ID.String(),
			Action: audit.ActionRailIssued,
			Amount: amount,
			Fee:    fee,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RailsIssued.Inc()
	}
	s.anchorAsync(ctx, audit.Event{
		Owner:  owner,
		Agent:  agent,
		RailID: rail.ID.String(),
		Action: audit.ActionRailIssued,
		Amount: amount,
		Fee:    fee,
	})
	return rail, nil
}

// ExecuteDraw spends part of a rail's limit. The rail is re-read under the
// owner transaction, so a draw racing the kill switch sees the revocation.
func (s *Service) ExecuteDraw(ctx context.Context, railID domain.RailID, amount domain.Amount) error {
	if railID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "rail id is required")
	}
	if amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}

	rail, err := s.find(ctx, railID)
	if err != nil {
		return err
	}
	if agent := requestcontext.Agent(ctx); !agent.IsNil() && agent != rail.Agent {
		return dErrors.New(dErrors.CodeNotFound, "rail not found")
	}

	err = s.runner.RunInOwnerTx(ctx, rail.Owner, func(ctx context.Context) error {
		rail, err := s.find(ctx, railID)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		if !rail.IsActive(now) {
			return dErrors.New(dErrors.CodeRailNotActive, "rail is revoked or expired")
		}
		if amount > rail.Remaining() {
			return dErrors.New(dErrors.CodeDrawExceedsLimit, "draw exceeds rail limit")
		}

		rail.UsedAmount += amount
		if err := s.store.Update(ctx, rail); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save rail")
		}
		return s.emit(ctx, audit.Event{
			Owner:  rail.Owner,
			Agent:  rail.Agent,
			RailID: rail.ID.String(),
			Action: audit.ActionDrawExecuted,
			Amount: amount,
		})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.DrawsExecuted.Inc()
	}
	return nil
}

// RevokeRail revokes one rail on the owner's behalf. An owner mismatch
// reports NotFound rather than leaking the rail's existence. Idempotent for
// an already revoked rail.
func (s *Service) RevokeRail(ctx context.Context, owner domain.OwnerID, railID domain.RailID) error {
	if owner.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}
	if railID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "rail id is required")
	}

	err := s.runner.RunInOwnerTx(ctx, owner, func(ctx context.Context) error {
		rail, err := s.find(ctx, railID)
		if err != nil {
			return err
		}
		if rail.Owner != owner {
			return dErrors.New(dErrors.CodeNotFound, "rail not found")
		}
		if rail.Revoked {
			return nil
		}

		now := requestcontext.Now(ctx)
		rail.Revoked = true
		rail.RevokedAt = &now
		if err := s.store.Update(ctx, rail); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save rail")
		}
		return s.emit(ctx, audit.Event{
			Owner:  owner,
			Agent:  rail.Agent,
			RailID: rail.ID.String(),
			Action: audit.ActionRailRevoked,
		})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RailsRevoked.WithLabelValues("owner").Inc()
	}
	return nil
}

// RevokeAll is the kill switch: one atomic transition flips every rail of
// the owner inactive. Zero active rails is success with count zero; NotFound
// only when the owner has no stake at all.
func (s *Service) RevokeAll(ctx context.Context, owner domain.OwnerID) (int, error) {
	if owner.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}

	started := time.Now()
	var revoked int
	err := s.runner.RunInOwnerTx(ctx, owner, func(ctx context.Context) error {
		// taking the stake lock first means the kill switch wins ties
		// with concurrent reserves and draws
		if _, err := s.stakes.Get(ctx, owner); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		count, err := s.store.RevokeAllByOwner(ctx, owner, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke rails")
		}
		revoked = count
		return s.emit(ctx, audit.Event{Owner: owner, Action: audit.ActionKillSwitch, Count: count})
	})
	if err != nil {
		return 0, err
	}

	if s.marker != nil {
		if err := s.marker.MarkOwnerRevoked(ctx, owner); err != nil {
			s.logger.ErrorContext(ctx, "failed to write kill-switch marker",
				"owner", owner,
				"error", err,
			)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveKillSwitch(revoked, float64(time.Since(started).Microseconds())/1000.0)
	}
	s.anchorAsync(ctx, audit.Event{Owner: owner, Action: audit.ActionKillSwitch, Count: revoked})
	return revoked, nil
}

// anchorAsync mirrors a committed transition on-chain without blocking the
// request. The context is detached so the HTTP cancellation does not abort
// confirmation polling.
func (s *Service) anchorAsync(ctx context.Context, event audit.Event) {
	if s.anchor == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		if _, err := s.anchor.AnchorEvent(detached, event); err != nil {
			s.logger.ErrorContext(detached, "chain anchoring failed",
				"action", event.Action,
				"owner", event.Owner,
				"error", err,
			)
		}
	}()
}

// RailsForOwner returns the owner's rails in issuance order.
func (s *Service) RailsForOwner(ctx context.Context, owner domain.OwnerID) ([]Rail, error) {
	rails, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rails")
	}
	return rails, nil
}

// RailsForAgent returns the agent's rails in issuance order.
func (s *Service) RailsForAgent(ctx context.Context, agent domain.AgentID) ([]Rail, error) {
	rails, err := s.store.ListByAgent(ctx, agent)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rails")
	}
	return rails, nil
}

// CountActiveByOwner is the surface the stake ledger uses to refuse
// re-staking and unstaking under outstanding rails.
func (s *Service) CountActiveByOwner(ctx context.Context, owner domain.OwnerID, now time.Time) (int, error) {
	return s.store.CountActiveByOwner(ctx, owner, now)
}

func (s *Service) find(ctx context.Context, railID domain.RailID) (*Rail, error) {
	rail, err := s.store.FindByID(ctx, railID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "rail not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up rail")
	}
	return rail, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"owner", event.Owner,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
