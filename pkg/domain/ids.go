// Package domain holds the identifier and amount types shared across the
// rail ledger. Owners and agents are Stellar accounts; rails are internal
// UUIDs; proof hashes are opaque 32-byte digests supplied by the verifier.
package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/stellar/go/strkey"
)

// OwnerID identifies a staking principal by Stellar account.
type OwnerID string

// AgentID identifies an autonomous agent by Stellar account. Distinct from
// OwnerID so the compiler rejects owner/agent mixups at call sites.
type AgentID string

func parseAccount(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("account id is empty")
	}
	if !strkey.IsValidEd25519PublicKey(s) {
		return "", fmt.Errorf("account id %q is not a valid ed25519 public key", s)
	}
	return s, nil
}

// ParseOwnerID validates and returns an OwnerID.
func ParseOwnerID(s string) (OwnerID, error) {
	account, err := parseAccount(s)
	if err != nil {
		return "", fmt.Errorf("owner: %w", err)
	}
	return OwnerID(account), nil
}

func (id OwnerID) String() string { return string(id) }
func (id OwnerID) IsNil() bool    { return id == "" }

// ParseAgentID validates and returns an AgentID.
func ParseAgentID(s string) (AgentID, error) {
	account, err := parseAccount(s)
	if err != nil {
		return "", fmt.Errorf("agent: %w", err)
	}
	return AgentID(account), nil
}

func (id AgentID) String() string { return string(id) }
func (id AgentID) IsNil() bool    { return id == "" }

// RailID identifies a compliance rail.
type RailID uuid.UUID

// NewRailID returns a fresh random rail ID.
func NewRailID() RailID {
	return RailID(uuid.New())
}

// ParseRailID parses a rail ID from its string form. Empty and all-zero
// values are rejected.
func ParseRailID(s string) (RailID, error) {
	if s == "" {
		return RailID{}, fmt.Errorf("rail id is empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return RailID{}, fmt.Errorf("rail id %q: %w", s, err)
	}
	if parsed == uuid.Nil {
		return RailID{}, fmt.Errorf("rail id is nil")
	}
	return RailID(parsed), nil
}

func (id RailID) String() string { return uuid.UUID(id).String() }
func (id RailID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// ProofHash is the digest of the off-ledger KYC proof document. The registry
// stores only the hash, never the document.
type ProofHash [32]byte

// ParseProofHash decodes a 64-character hex digest.
func ParseProofHash(s string) (ProofHash, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ProofHash{}, fmt.Errorf("proof hash: %w", err)
	}
	if len(raw) != 32 {
		return ProofHash{}, fmt.Errorf("proof hash: want 32 bytes, got %d", len(raw))
	}
	var h ProofHash
	copy(h[:], raw)
	return h, nil
}

func (h ProofHash) String() string { return hex.EncodeToString(h[:]) }
func (h ProofHash) IsZero() bool   { return h == ProofHash{} }
