// Package rail issues bounded draw grants against an owner's stake and owns
// the kill switch. A rail caps what one agent may spend; its lifetime never
// exceeds the backing stake's.
package rail

import (
	"time"

	"railguard/pkg/domain"
)

// Rail is one agent's spending grant.
type Rail struct {
	ID            domain.RailID
	Owner         domain.OwnerID
	Agent         domain.AgentID
	SpendingLimit domain.Amount
	UsedAmount    domain.Amount
	Fee           domain.Amount
	Revoked       bool
	IssuedAt      time.Time
	ExpiresAt     time.Time
	RevokedAt     *time.Time
}

// IsActive recomputes liveness against the supplied clock. Expiry is lazy:
// nothing flips stored state when a rail ages out, reads just report it
// inactive.
func (r *Rail) IsActive(now time.Time) bool {
	return !r.Revoked && now.Before(r.ExpiresAt)
}

// Remaining returns the undrawn portion of the rail's limit.
func (r *Rail) Remaining() domain.Amount {
	return r.SpendingLimit - r.UsedAmount
}
