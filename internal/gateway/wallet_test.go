package gateway_test

import (
	"context"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railguard/internal/gateway"
	dErrors "railguard/pkg/domain-errors"
)

func TestNewKeypairWallet(t *testing.T) {
	kp := keypair.MustRandom()

	wallet, err := gateway.NewKeypairWallet(kp.Seed(), network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), wallet.PublicKey())

	_, err = gateway.NewKeypairWallet("not-a-seed", network.TestNetworkPassphrase)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeWalletUnavailable))
}

func TestSignTransaction(t *testing.T) {
	kp := keypair.MustRandom()
	wallet, err := gateway.NewKeypairWallet(kp.Seed(), network.TestNetworkPassphrase)
	require.NoError(t, err)

	source := txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 1}
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
		Operations: []txnbuild.Operation{
			&txnbuild.ManageData{Name: "railguard:anchor", Value: []byte("digest")},
		},
	})
	require.NoError(t, err)
	envelope, err := tx.Base64()
	require.NoError(t, err)

	signed, err := wallet.SignTransaction(context.Background(), envelope)
	require.NoError(t, err)

	parsed, err := txnbuild.TransactionFromXDR(signed)
	require.NoError(t, err)
	signedTx, ok := parsed.Transaction()
	require.True(t, ok)
	assert.Len(t, signedTx.Signatures(), 1)
}

func TestSignTransactionMalformedEnvelope(t *testing.T) {
	wallet, err := gateway.NewKeypairWallet(keypair.MustRandom().Seed(), network.TestNetworkPassphrase)
	require.NoError(t, err)

	_, err = wallet.SignTransaction(context.Background(), "not-xdr")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
