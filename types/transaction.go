package types

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/bulknetwork/bulk-keychain-go/crypto"
)

// SignedTransaction is the engine's output: a signed envelope the caller
// hands to the submission layer.
//
// INVARIANT: Signature verifies against Signer over the canonical digest of
// (Action, Nonce). Tampering with any field invalidates verification.
//
// Account and Signer are usually the same public key; they differ when an
// authorized agent wallet signs on behalf of the account.
type SignedTransaction struct {
	// Action echoes the signed intent in the venue's JSON dialect.
	Action Action

	// Nonce is the unique, monotonically increasing value bound into the
	// digest. Never reused by the issuing signer.
	Nonce uint64

	// Account is the base58 public key of the trading account.
	Account string

	// Signer is the base58 public key that produced the signature.
	Signer string

	// Signature is the base58 Ed25519 signature over the digest.
	Signature string

	// TxID is the base58 digest, the venue's transaction/order ID.
	// Available before any server response, for optimistic tracking.
	TxID string
}

// signedTransactionJSON is the wire shape of a SignedTransaction.
type signedTransactionJSON struct {
	Action    json.RawMessage `json:"action"`
	Nonce     uint64          `json:"nonce"`
	Account   string          `json:"account"`
	Signer    string          `json:"signer"`
	Signature string          `json:"signature"`
	TxID      string          `json:"tx_id,omitempty"`
}

// MarshalJSON serializes the transaction with the action in its
// discriminated form.
func (tx *SignedTransaction) MarshalJSON() ([]byte, error) {
	action, err := MarshalAction(tx.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(signedTransactionJSON{
		Action:    action,
		Nonce:     tx.Nonce,
		Account:   tx.Account,
		Signer:    tx.Signer,
		Signature: tx.Signature,
		TxID:      tx.TxID,
	})
}

// UnmarshalJSON is the exact inverse of MarshalJSON.
func (tx *SignedTransaction) UnmarshalJSON(data []byte) error {
	var raw signedTransactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	action, err := UnmarshalAction(raw.Action)
	if err != nil {
		return err
	}
	*tx = SignedTransaction{
		Action:    action,
		Nonce:     raw.Nonce,
		Account:   raw.Account,
		Signer:    raw.Signer,
		Signature: raw.Signature,
		TxID:      raw.TxID,
	}
	return nil
}

// Verify recomputes the canonical digest of (Action, Nonce) and checks the
// signature against the Signer public key.
//
// INVARIANT: verification is deterministic - the same transaction always
// produces the same result, with no dependence on external state.
func (tx *SignedTransaction) Verify() error {
	if tx == nil {
		return fmt.Errorf("%w: transaction is nil", ErrInvalidTransaction)
	}

	signerPk, err := crypto.PubkeyFromBase58(tx.Signer)
	if err != nil {
		return fmt.Errorf("%w: signer: %v", ErrInvalidTransaction, err)
	}
	sig, err := base58.Decode(tx.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature: %v", ErrInvalidTransaction, err)
	}

	digest, err := DigestAction(tx.Action, tx.Nonce)
	if err != nil {
		return err
	}
	if !signerPk.Verify(digest[:], sig) {
		return fmt.Errorf("%w: signature does not verify for signer %s", ErrInvalidSignature, tx.Signer)
	}
	return nil
}
