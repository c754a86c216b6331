// Package signer orchestrates the full signing pipeline: take an action,
// draw a nonce, produce the canonical payload, sign the digest, and wrap the
// result into a submission-ready transaction.
package signer

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/bulknetwork/bulk-keychain-go/crypto"
	"github.com/bulknetwork/bulk-keychain-go/nonce"
	"github.com/bulknetwork/bulk-keychain-go/types"
)

// Signer binds one keypair to one nonce clock.
//
// INVARIANT: every signature the signer emits carries a nonce unique across
// the signer's lifetime. A nonce is consumed the moment the clock issues it;
// if the signing that follows fails, that nonce is abandoned, never reused.
//
// Safe for concurrent use: the clock serializes nonce issuance and Ed25519
// signing is stateless.
type Signer struct {
	kp    *crypto.Keypair
	clock *nonce.Clock

	// account is the base58 public key transactions are attributed to.
	// Equals the keypair's own public key unless this signer acts as an
	// authorized agent wallet for another account.
	account string
}

// New creates a Signer with the default high-frequency nonce clock.
func New(kp *crypto.Keypair) (*Signer, error) {
	return WithClock(kp, nonce.NewHighFrequencyClock())
}

// WithClock creates a Signer using a caller-supplied nonce clock, for
// alternate nonce strategies or deterministic tests.
func WithClock(kp *crypto.Keypair, clock *nonce.Clock) (*Signer, error) {
	if kp == nil {
		return nil, ErrNilKeypair
	}
	if clock == nil {
		clock = nonce.NewHighFrequencyClock()
	}
	return &Signer{
		kp:      kp,
		clock:   clock,
		account: kp.Pubkey().String(),
	}, nil
}

// FromBase58 creates a Signer from a base58-encoded secret key.
func FromBase58(secret string) (*Signer, error) {
	kp, err := crypto.FromBase58(secret)
	if err != nil {
		return nil, err
	}
	return New(kp)
}

// ForAccount marks this signer as an agent wallet signing on behalf of
// another account. Transactions carry the given account while the signature
// stays the agent's own.
func (s *Signer) ForAccount(account crypto.Pubkey) *Signer {
	return &Signer{
		kp:      s.kp,
		clock:   s.clock,
		account: account.String(),
	}
}

// Pubkey returns the signer's public key.
func (s *Signer) Pubkey() crypto.Pubkey {
	return s.kp.Pubkey()
}

// Sign draws the next nonce and signs the action.
func (s *Signer) Sign(a types.Action) (*types.SignedTransaction, error) {
	n, err := s.clock.Next()
	if err != nil {
		return nil, err
	}
	return s.SignWithNonce(a, n)
}

// SignWithNonce signs the action under a caller-managed nonce. The caller
// owns uniqueness; the venue rejects reuse.
func (s *Signer) SignWithNonce(a types.Action, n uint64) (*types.SignedTransaction, error) {
	payload, err := types.EncodeAction(a)
	if err != nil {
		return nil, err
	}
	return s.seal(a, payload, n), nil
}

// seal signs the digest of (payload, nonce) and assembles the envelope.
// payload must be the canonical encoding of a.
func (s *Signer) seal(a types.Action, payload []byte, n uint64) *types.SignedTransaction {
	digest := types.Digest(payload, n)
	return &types.SignedTransaction{
		Action:    a,
		Nonce:     n,
		Account:   s.account,
		Signer:    s.kp.Pubkey().String(),
		Signature: base58.Encode(s.kp.Sign(digest[:])),
		TxID:      digest.String(),
	}
}

// SignGroup signs a sequence of orders as one atomic unit: one nonce, one
// signature over the whole group payload. The venue accepts all members or
// none. Member order is preserved and position-sensitive.
//
// Only orders are eligible; any other variant returns ErrIneligibleVariant.
func (s *Signer) SignGroup(actions []types.Action) (*types.SignedTransaction, error) {
	if len(actions) == 0 {
		return nil, ErrEmptyGroup
	}

	orders := make([]*types.Order, len(actions))
	for i, a := range actions {
		o, ok := a.(*types.Order)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrIneligibleVariant, i, a)
		}
		orders[i] = o
	}

	g, err := types.NewGroup(orders)
	if err != nil {
		return nil, err
	}
	return s.Sign(g)
}

// SignOrderGroup is SignGroup for callers already holding typed orders.
func (s *Signer) SignOrderGroup(orders []*types.Order) (*types.SignedTransaction, error) {
	if len(orders) == 0 {
		return nil, ErrEmptyGroup
	}
	g, err := types.NewGroup(orders)
	if err != nil {
		return nil, err
	}
	return s.Sign(g)
}

// SignFaucet signs a testnet funds request for the signing account.
func (s *Signer) SignFaucet() (*types.SignedTransaction, error) {
	return s.Sign(&types.Faucet{})
}

// SignUserSettings signs a per-symbol settings update.
func (s *Signer) SignUserSettings(settings []types.LeverageSetting) (*types.SignedTransaction, error) {
	u, err := types.NewUserSettings(settings)
	if err != nil {
		return nil, err
	}
	return s.Sign(u)
}

// SignAgentWallet signs an agent key authorization, or a revocation when
// del is set.
func (s *Signer) SignAgentWallet(agent crypto.Pubkey, del bool) (*types.SignedTransaction, error) {
	a, err := types.NewAgentWallet(agent, del)
	if err != nil {
		return nil, err
	}
	return s.Sign(a)
}
