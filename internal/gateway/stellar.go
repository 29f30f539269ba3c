package gateway

import (
	"context"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/txnbuild"

	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
)

// HorizonGateway talks to a Horizon instance. Confirmation polling interval
// and timeout come from configuration.
type HorizonGateway struct {
	client   horizonclient.ClientInterface
	interval time.Duration
	timeout  time.Duration
}

func NewHorizonGateway(client horizonclient.ClientInterface, interval, timeout time.Duration) *HorizonGateway {
	return &HorizonGateway{client: client, interval: interval, timeout: timeout}
}

// BuildAnchorTx builds an unsigned envelope carrying the transition digest as
// a hash memo from the given source account.
func (g *HorizonGateway) BuildAnchorTx(_ context.Context, source string, digest domain.ProofHash) (string, error) {
	sourceAccount, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: source})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeGatewayFailure, "failed to load anchor account")
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
		Memo:                 txnbuild.MemoHash(digest),
		Operations: []txnbuild.Operation{
			&txnbuild.ManageData{Name: "railguard:anchor", Value: digest[:]},
		},
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeGatewayFailure, "failed to build anchor transaction")
	}
	return tx.Base64()
}

// Submit sends a signed envelope. The returned status is submitted, never
// confirmed; confirmation is a separate poll.
func (g *HorizonGateway) Submit(_ context.Context, signedXDR string) (Submission, error) {
	resp, err := g.client.SubmitTransactionXDR(signedXDR)
	if err != nil {
		return Submission{}, dErrors.Wrap(err, dErrors.CodeGatewayFailure, "transaction submission failed")
	}
	return Submission{Hash: resp.Hash, Status: StatusSubmitted}, nil
}

// AwaitConfirmation polls Horizon until the transaction is found or the
// timeout elapses. Timeout reports Unconfirmed: the submission is
// indeterminate and the caller decides whether to inspect later. No
// automatic resubmission.
func (g *HorizonGateway) AwaitConfirmation(ctx context.Context, hash string) (SubmissionStatus, error) {
	deadline := time.NewTimer(g.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		tx, err := g.client.TransactionDetail(hash)
		if err == nil {
			if tx.Successful {
				return StatusConfirmed, nil
			}
			return StatusFailed, dErrors.New(dErrors.CodeGatewayFailure, "transaction failed on-chain")
		}

		select {
		case <-ctx.Done():
			return StatusSubmitted, dErrors.Wrap(ctx.Err(), dErrors.CodeUnconfirmed, "confirmation polling cancelled")
		case <-deadline.C:
			return StatusSubmitted, dErrors.New(dErrors.CodeUnconfirmed, "confirmation timed out")
		case <-ticker.C:
		}
	}
}
