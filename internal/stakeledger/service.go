package stakeledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"railguard/internal/audit"
	"railguard/internal/ledger"
	"railguard/internal/platform/metrics"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	"railguard/pkg/platform/sentinel"
	"railguard/pkg/requestcontext"
)

// Store persists stakes. FindByOwnerForUpdate must lock the row when backed
// by postgres; the memory implementation relies on the owner mutex instead.
type Store interface {
	Save(ctx context.Context, stake *Stake) error
	FindByOwner(ctx context.Context, owner domain.OwnerID) (*Stake, error)
	FindByOwnerForUpdate(ctx context.Context, owner domain.OwnerID) (*Stake, error)
}

// CredentialChecker is the identity registry surface the ledger needs.
type CredentialChecker interface {
	IsActive(ctx context.Context, owner domain.OwnerID) (bool, error)
}

// ActiveRailCounter reports outstanding active rails for an owner. Staking
// over or unstaking under active rails is refused.
type ActiveRailCounter interface {
	CountActiveByOwner(ctx context.Context, owner domain.OwnerID, now time.Time) (int, error)
}

// Limits bound the spending limit accepted on stake creation.
type Limits struct {
	Min domain.Amount
	Max domain.Amount
}

// Service implements the stake ledger operations.
type Service struct {
	store       Store
	credentials CredentialChecker
	rails       ActiveRailCounter
	runner      ledger.TxRunner
	limits      Limits
	auditor     audit.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewService(
	store Store,
	credentials CredentialChecker,
	rails ActiveRailCounter,
	runner ledger.TxRunner,
	limits Limits,
	auditor audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:       store,
		credentials: credentials,
		rails:       rails,
		runner:      runner,
		limits:      limits,
		auditor:     auditor,
		logger:      logger,
		metrics:     m,
	}
}

// Stake creates or replaces the owner's stake. Re-staking overwrites the
// limit and expiry, resets the used amount, and preserves accumulated fees.
// Refused while active rails are outstanding.
func (s *Service) Stake(ctx context.Context, owner domain.OwnerID, spendingLimit domain.Amount, duration time.Duration) (*Stake, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}
	if duration <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "duration must be positive")
	}
	if spendingLimit < s.limits.Min || spendingLimit > s.limits.Max {
		return nil, dErrors.New(dErrors.CodeLimitOutOfRange, "spending limit outside allowed range")
	}

	active, err := s.credentials.IsActive(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check credential")
	}
	if !active {
		return nil, dErrors.New(dErrors.CodeNoCredential, "owner has no active credential")
	}

	now := requestcontext.Now(ctx)
	var stake *Stake
	err = s.runner.RunInOwnerTx(ctx, owner, func(ctx context.Context) error {
		existing, err := s.store.FindByOwnerForUpdate(ctx, owner)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up stake")
		}

		var preservedFees domain.Amount
		if existing != nil {
			outstanding, err := s.rails.CountActiveByOwner(ctx, owner, now)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count active rails")
			}
			if outstanding > 0 {
				return dErrors.New(dErrors.CodeActiveRailsExist, "active rails are outstanding")
			}
			preservedFees = existing.AccumulatedFees
		}

		stake = &Stake{
			Owner:           owner,
			SpendingLimit:   spendingLimit,
			UsedAmount:      0,
			AccumulatedFees: preservedFees,
			Active:          true,
			StakedAt:        now,
			ExpiresAt:       now.Add(duration),
		}
		if err := s.store.Save(ctx, stake); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stake")
		}
		return s.emit(ctx, audit.Event{Owner: owner, Action: audit.ActionStakeCreated, Amount: spendingLimit})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StakesCreated.Inc()
	}
	return stake, nil
}

// Unstake deactivates the stake and returns the accumulated fees. Refused
// while active rails are outstanding.
func (s *Service) Unstake(ctx context.Context, owner domain.OwnerID) (domain.Amount, error) {
	if owner.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}

	now := requestcontext.Now(ctx)
	var fees domain.Amount
	err := s.runner.RunInOwnerTx(ctx, owner, func(ctx context.Context) error {
		stake, err := s.findForUpdate(ctx, owner)
		if err != nil {
			return err
		}

		outstanding, err := s.rails.CountActiveByOwner(ctx, owner, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count active rails")
		}
		if outstanding > 0 {
			return dErrors.New(dErrors.CodeActiveRailsExist, "active rails are outstanding")
		}

		fees = stake.AccumulatedFees
		stake.Active = false
		stake.AccumulatedFees = 0
		if err := s.store.Save(ctx, stake); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stake")
		}
		return s.emit(ctx, audit.Event{Owner: owner, Action: audit.ActionStakeUnstaked, Fee: fees})
	})
	if err != nil {
		return 0, err
	}
	return fees, nil
}

// ClaimEarnings returns and zeroes the accumulated fees without touching the
// stake itself.
func (s *Service) ClaimEarnings(ctx context.Context, owner domain.OwnerID) (domain.Amount, error) {
	if owner.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "owner is required")
	}

	var fees domain.Amount
	err := s.runner.RunInOwnerTx(ctx, owner, func(ctx context.Context) error {
		stake, err := s.findForUpdate(ctx, owner)
		if err != nil {
			return err
		}

		fees = stake.AccumulatedFees
		if fees == 0 {
			return nil
		}
		stake.AccumulatedFees = 0
		if err := s.store.Save(ctx, stake); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stake")
		}
		return s.emit(ctx, audit.Event{Owner: owner, Action: audit.ActionEarningsClaimed, Fee: fees})
	})
	if err != nil {
		return 0, err
	}
	return fees, nil
}

// Reserve debits capacity for a new rail. Must be called inside the owner's
// transaction; it re-checks limit and expiry under the lock so a stale
// snapshot read can never gate the debit.
func (s *Service) Reserve(ctx context.Context, owner domain.OwnerID, amount domain.Amount) (*Reservation, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}

	stake, err := s.findForUpdate(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if !stake.Active || stake.IsExpired(now) || amount > stake.SpendingLimit-stake.UsedAmount {
		if s.metrics != nil {
			s.metrics.ReserveRejections.Inc()
		}
		return nil, dErrors.New(dErrors.CodeInsufficientCapacity, "reserve exceeds remaining capacity")
	}

	stake.UsedAmount += amount
	if err := s.store.Save(ctx, stake); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stake")
	}

	return &Reservation{
		Owner:     owner,
		Amount:    amount,
		Remaining: stake.SpendingLimit - stake.UsedAmount,
		ExpiresAt: stake.ExpiresAt,
	}, nil
}

// CreditFee adds the staker's share of a rail fee to the stake. Called inside
// the owner's transaction by the rail issuer.
func (s *Service) CreditFee(ctx context.Context, owner domain.OwnerID, fee domain.Amount) error {
	if fee < 0 {
		return dErrors.New(dErrors.CodeValidation, "fee must not be negative")
	}
	if fee == 0 {
		return nil
	}

	stake, err := s.findForUpdate(ctx, owner)
	if err != nil {
		return err
	}
	stake.AccumulatedFees += fee
	if err := s.store.Save(ctx, stake); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stake")
	}
	return nil
}

// AvailableCapacity returns limit minus used, zero when expired or inactive.
func (s *Service) AvailableCapacity(ctx context.Context, owner domain.OwnerID) (domain.Amount, error) {
	stake, err := s.find(ctx, owner)
	if err != nil {
		return 0, err
	}
	return stake.AvailableCapacity(requestcontext.Now(ctx)), nil
}

// Get returns the owner's stake.
func (s *Service) Get(ctx context.Context, owner domain.OwnerID) (*Stake, error) {
	return s.find(ctx, owner)
}

func (s *Service) find(ctx context.Context, owner domain.OwnerID) (*Stake, error) {
	stake, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "stake not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up stake")
	}
	return stake, nil
}

func (s *Service) findForUpdate(ctx context.Context, owner domain.OwnerID) (*Stake, error) {
	stake, err := s.store.FindByOwnerForUpdate(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "stake not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up stake")
	}
	return stake, nil
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
