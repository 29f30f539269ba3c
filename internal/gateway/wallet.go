package gateway

import (
	"context"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	dErrors "railguard/pkg/domain-errors"
)

// KeypairWallet signs with a locally held ed25519 seed. Non-interactive, so
// it never reports UserRejected; that code belongs to browser and hardware
// wallet providers.
type KeypairWallet struct {
	kp                *keypair.Full
	networkPassphrase string
}

func NewKeypairWallet(seed, networkPassphrase string) (*KeypairWallet, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletUnavailable, "invalid signer seed")
	}
	return &KeypairWallet{kp: kp, networkPassphrase: networkPassphrase}, nil
}

func (w *KeypairWallet) PublicKey() string {
	return w.kp.Address()
}

// SignTransaction signs a base64 envelope and returns the signed envelope.
func (w *KeypairWallet) SignTransaction(_ context.Context, envelopeXDR string) (string, error) {
	parsed, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, "malformed transaction envelope")
	}
	tx, ok := parsed.Transaction()
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "envelope is not a simple transaction")
	}

	signed, err := tx.Sign(w.networkPassphrase, w.kp)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeWalletUnavailable, "signing failed")
	}
	return signed.Base64()
}
