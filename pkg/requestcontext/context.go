// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services consume them; keeping
// the package free of net/http lets workers and tests use the same accessors.
//
// Usage in services (read values):
//
//	owner := requestcontext.Owner(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"railguard/pkg/domain"
)

type (
	ownerKey       struct{}
	agentKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyOwner       = ownerKey{}
	ContextKeyAgent       = agentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Owner retrieves the authenticated owner account from the context.
func Owner(ctx context.Context) domain.OwnerID {
	if owner, ok := ctx.Value(ContextKeyOwner).(domain.OwnerID); ok {
		return owner
	}
	return ""
}

// WithOwner injects an owner account into the context.
func WithOwner(ctx context.Context, owner domain.OwnerID) context.Context {
	return context.WithValue(ctx, ContextKeyOwner, owner)
}

// Agent retrieves the authenticated agent account from the context.
func Agent(ctx context.Context) domain.AgentID {
	if agent, ok := ctx.Value(ContextKeyAgent).(domain.AgentID); ok {
		return agent
	}
	return ""
}

// WithAgent injects an agent account into the context.
func WithAgent(ctx context.Context, agent domain.AgentID) context.Context {
	return context.WithValue(ctx, ContextKeyAgent, agent)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts like workers and tests that don't pin it.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Used by the request-time
// middleware and by tests that need deterministic clocks.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
