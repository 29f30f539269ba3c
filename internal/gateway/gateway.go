// Package gateway mirrors accepted ledger transitions onto the Stellar
// network. The transactional store stays authoritative; the chain anchor is
// an after-commit effect whose confirmation is polled, never assumed.
package gateway

//go:generate mockgen -source=gateway.go -destination=mocks/gateway_mocks.go -package=mocks

import "context"

// SubmissionStatus tracks a transaction through the network. Submitted and
// confirmed are distinct states; an unconfirmed submission is indeterminate,
// not failed.
type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "submitted"
	StatusConfirmed SubmissionStatus = "confirmed"
	StatusFailed    SubmissionStatus = "failed"
)

// Submission is the receipt returned by Submit.
type Submission struct {
	Hash   string
	Status SubmissionStatus
}

// WalletProvider signs transaction envelopes. Implementations fail with
// WalletUnavailable when the signer cannot be reached and UserRejected when
// an interactive signer declines.
type WalletProvider interface {
	PublicKey() string
	SignTransaction(ctx context.Context, envelopeXDR string) (string, error)
}

// ContractGateway submits signed envelopes and polls for confirmation.
// AwaitConfirmation returns Unconfirmed after its bounded timeout; it never
// retries the submission itself.
type ContractGateway interface {
	Submit(ctx context.Context, signedXDR string) (Submission, error)
	AwaitConfirmation(ctx context.Context, hash string) (SubmissionStatus, error)
}
