// Package stakeledger is the accounting core: one stake per owner, holding a
// spending limit, a running used amount, and fees earned from rails issued
// against it. Every mutation runs inside the owner's serialized transaction.
package stakeledger

import (
	"time"

	"railguard/pkg/domain"
)

// Stake is one owner's collateral position.
type Stake struct {
	Owner           domain.OwnerID
	SpendingLimit   domain.Amount
	UsedAmount      domain.Amount
	AccumulatedFees domain.Amount
	Active          bool
	StakedAt        time.Time
	ExpiresAt       time.Time
}

// IsExpired reports whether the stake has passed its expiry. Expiry is
// evaluated lazily against the supplied clock; nothing flips stored state.
func (s *Stake) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AvailableCapacity returns limit minus used, or zero when the stake is
// inactive or expired.
func (s *Stake) AvailableCapacity(now time.Time) domain.Amount {
	if !s.Active || s.IsExpired(now) {
		return 0
	}
	return s.SpendingLimit - s.UsedAmount
}

// Reservation is the receipt Reserve hands back to the rail issuer.
type Reservation struct {
	Owner     domain.OwnerID
	Amount    domain.Amount
	Remaining domain.Amount
	ExpiresAt time.Time
}
