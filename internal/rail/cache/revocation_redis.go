// Package cache holds the redis kill-switch marker. The marker lets
// gateway-facing reads observe a bulk revocation before any
// eventually-consistent projection catches up; the transactional store
// remains authoritative.
package cache

import (
	"context"
	"fmt"
	"time"

	platformredis "railguard/internal/platform/redis"
	"railguard/pkg/domain"
)

const defaultMarkerTTL = 24 * time.Hour

// RevocationMarker writes and reads per-owner kill-switch markers.
type RevocationMarker struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewRevocationMarker(client *platformredis.Client) *RevocationMarker {
	return &RevocationMarker{client: client, ttl: defaultMarkerTTL}
}

func markerKey(owner domain.OwnerID) string {
	return fmt.Sprintf("railguard:killswitch:%s", owner)
}

// MarkOwnerRevoked sets the owner's marker with a TTL. The marker only needs
// to outlive projection lag, not the revocation itself.
func (m *RevocationMarker) MarkOwnerRevoked(ctx context.Context, owner domain.OwnerID) error {
	if err := m.client.Set(ctx, markerKey(owner), "1", m.ttl).Err(); err != nil {
		return fmt.Errorf("set kill-switch marker: %w", err)
	}
	return nil
}

// IsOwnerRevoked reports whether a recent kill switch fired for the owner.
func (m *RevocationMarker) IsOwnerRevoked(ctx context.Context, owner domain.OwnerID) (bool, error) {
	n, err := m.client.Exists(ctx, markerKey(owner)).Result()
	if err != nil {
		return false, fmt.Errorf("read kill-switch marker: %w", err)
	}
	return n > 0, nil
}
