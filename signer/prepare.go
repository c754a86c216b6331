package signer

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/bulknetwork/bulk-keychain-go/crypto"
	"github.com/bulknetwork/bulk-keychain-go/types"
)

// PreparedMessage is everything an external wallet needs to produce a
// signature without this process ever holding the private key: the exact
// digest to sign plus the envelope fields to reassemble afterwards.
type PreparedMessage struct {
	// Action is the intent awaiting signature.
	Action types.Action

	// Nonce bound into the digest.
	Nonce uint64

	// Account and Signer are base58 public keys. They differ when an
	// agent wallet signs on behalf of the account.
	Account string
	Signer  string

	// Digest is the 32 bytes the wallet must sign, raw.
	Digest []byte

	// TxID is the base58 digest, usable for tracking before the
	// signature exists.
	TxID string
}

// DigestBase58 renders the digest for wallets that take base58 input.
func (p *PreparedMessage) DigestBase58() string {
	return base58.Encode(p.Digest)
}

// DigestBase64 renders the digest for wallets that take base64 input.
func (p *PreparedMessage) DigestBase64() string {
	return base64.StdEncoding.EncodeToString(p.Digest)
}

// DigestHex renders the digest for wallets that take hex input.
func (p *PreparedMessage) DigestHex() string {
	return hex.EncodeToString(p.Digest)
}

// ExternalSignature renders a raw 64-byte signature from an external wallet
// in the base58 form Finalize expects.
func ExternalSignature(raw []byte) string {
	return base58.Encode(raw)
}

// Prepare builds the message an external signer must sign. No private key
// is involved; signerKey identifies who is expected to sign.
func Prepare(a types.Action, account, signerKey crypto.Pubkey, nonce uint64) (*PreparedMessage, error) {
	digest, err := types.DigestAction(a, nonce)
	if err != nil {
		return nil, err
	}
	return &PreparedMessage{
		Action:  a,
		Nonce:   nonce,
		Account: account.String(),
		Signer:  signerKey.String(),
		Digest:  digest.Bytes(),
		TxID:    digest.String(),
	}, nil
}

// Finalize assembles a transaction from a prepared message and an
// externally produced base58 signature. The signature is verified against
// the prepared signer key before the envelope is returned, so a wallet that
// signed the wrong bytes is caught here rather than at the venue.
func Finalize(p *PreparedMessage, signatureB58 string) (*types.SignedTransaction, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: prepared message is nil", types.ErrInvalidTransaction)
	}
	tx := &types.SignedTransaction{
		Action:    p.Action,
		Nonce:     p.Nonce,
		Account:   p.Account,
		Signer:    p.Signer,
		Signature: signatureB58,
		TxID:      p.TxID,
	}
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	return tx, nil
}
