// Package audit records rail lifecycle events. Events are appended to a
// transactional outbox in the same database transaction as the ledger change
// they describe, then streamed to Kafka by the outbox worker. Kafka is the
// downstream source of truth for compliance reporting.
package audit

import (
	"context"
	"time"

	"railguard/pkg/domain"
)

// Action names one lifecycle transition.
type Action string

const (
	ActionCredentialIssued  Action = "credential_issued"
	ActionCredentialRevoked Action = "credential_revoked"
	ActionStakeCreated      Action = "stake_created"
	ActionStakeUnstaked     Action = "stake_unstaked"
	ActionEarningsClaimed   Action = "earnings_claimed"
	ActionRailIssued        Action = "rail_issued"
	ActionDrawExecuted      Action = "draw_executed"
	ActionRailRevoked       Action = "rail_revoked"
	ActionKillSwitch        Action = "kill_switch"
)

// Event is one audit record. Amounts are scaled integers; zero values are
// omitted from the published payload.
type Event struct {
	Owner     domain.OwnerID
	Agent     domain.AgentID
	RailID    string
	Action    Action
	Amount    domain.Amount
	Fee       domain.Amount
	Count     int
	RequestID string
	Timestamp time.Time
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher emits audit events. The ledger services treat kill-switch events
// as fail-closed: if the event cannot be persisted the revocation itself has
// already committed, so failures are logged and surfaced, never swallowed
// into a partial ledger state.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
