package gateway

//go:generate mockgen -source=anchor.go -destination=mocks/anchor_mocks.go -package=mocks

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"log/slog"

	"railguard/internal/audit"
	"railguard/internal/platform/metrics"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
)

// EnvelopeBuilder builds the unsigned anchor envelope for a digest.
type EnvelopeBuilder interface {
	BuildAnchorTx(ctx context.Context, source string, digest domain.ProofHash) (string, error)
}

// Anchor mirrors one ledger transition on-chain: build, sign, submit, poll.
// It runs after the local transaction has committed, so a gateway failure
// never unwinds ledger state; the outcome is recorded and reported instead.
type Anchor struct {
	builder EnvelopeBuilder
	wallet  WalletProvider
	gateway ContractGateway
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewAnchor(builder EnvelopeBuilder, wallet WalletProvider, gw ContractGateway, logger *slog.Logger, m *metrics.Metrics) *Anchor {
	return &Anchor{builder: builder, wallet: wallet, gateway: gw, logger: logger, metrics: m}
}

// AnchorEvent writes the event's digest to the chain and waits for
// confirmation. Returns the transaction hash alongside any error so an
// Unconfirmed outcome still identifies the submission.
func (a *Anchor) AnchorEvent(ctx context.Context, event audit.Event) (string, error) {
	digest, err := eventDigest(event)
	if err != nil {
		return "", err
	}

	envelope, err := a.builder.BuildAnchorTx(ctx, a.wallet.PublicKey(), digest)
	if err != nil {
		return "", err
	}

	signed, err := a.wallet.SignTransaction(ctx, envelope)
	if err != nil {
		return "", err
	}

	submission, err := a.gateway.Submit(ctx, signed)
	if err != nil {
		a.observe("submit_failed")
		return "", err
	}

	status, err := a.gateway.AwaitConfirmation(ctx, submission.Hash)
	a.observe(string(status))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnconfirmed) {
			a.logger.WarnContext(ctx, "anchor unconfirmed",
				"hash", submission.Hash,
				"action", event.Action,
			)
		}
		return submission.Hash, err
	}
	return submission.Hash, nil
}

func (a *Anchor) observe(status string) {
	if a.metrics == nil {
		return
	}
	a.metrics.GatewaySubmissions.WithLabelValues(status).Inc()
}

func eventDigest(event audit.Event) (domain.ProofHash, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.ProofHash{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode event")
	}
	return sha256.Sum256(payload), nil
}
