// Package identity is the registry of soulbound credentials. One credential
// per owner, derived from a KYC proof hash; credentials are never
// transferable and never deleted, only revoked.
package identity

import (
	"time"

	"railguard/pkg/domain"
)

// CredentialStatus is the lifecycle state of a credential.
type CredentialStatus string

const (
	StatusActive  CredentialStatus = "active"
	StatusRevoked CredentialStatus = "revoked"
)

// Credential is one owner's identity proof record.
type Credential struct {
	Owner     domain.OwnerID
	ProofHash domain.ProofHash
	Status    CredentialStatus
	IssuedAt  time.Time
	RevokedAt *time.Time
}

// IsActive reports whether the credential is usable for staking.
func (c *Credential) IsActive() bool {
	return c.Status == StatusActive
}
