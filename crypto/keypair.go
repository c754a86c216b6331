// Package crypto provides the key material for BULK transaction signing:
// Ed25519 keypairs, public keys, 32-byte identifiers, their base58 text
// encoding, and persistent key storage.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Key and signature sizes. Fixed by the venue's Ed25519 verifier.
const (
	// SeedSize is the size of an Ed25519 secret seed in bytes.
	SeedSize = ed25519.SeedSize

	// PubkeySize is the size of an Ed25519 public key in bytes.
	PubkeySize = ed25519.PublicKeySize

	// KeypairSize is the size of a full keypair (seed || public key).
	KeypairSize = ed25519.PrivateKeySize

	// SignatureSize is the size of an Ed25519 signature in bytes.
	SignatureSize = ed25519.SignatureSize

	// AddressSize is the size of a derived address in bytes.
	AddressSize = 20
)

// Keypair owns an Ed25519 private key for transaction signing.
//
// The private scalar never leaves the struct except through ToBase58 (the
// venue's export format). Signing and public-key derivation are the only
// other operations that touch it. Keypair values must not be copied; share
// the pointer.
type Keypair struct {
	priv ed25519.PrivateKey
}

// Generate produces a new random keypair from crypto/rand.
// Returns ErrEntropy if the secure random source fails.
func Generate() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return &Keypair{priv: priv}, nil
}

// FromBytes creates a keypair from raw bytes: either a 32-byte seed or a
// 64-byte full keypair (seed || public key).
//
// A 64-byte input whose trailing public key does not match the key derived
// from its seed is rejected with ErrKeyFormat - accepting it would produce
// signatures the venue cannot verify.
//
// The input is copied; the caller should zeroize its copy when sensitive.
func FromBytes(b []byte) (*Keypair, error) {
	switch len(b) {
	case SeedSize:
		seed := make([]byte, SeedSize)
		copy(seed, b)
		kp := &Keypair{priv: ed25519.NewKeyFromSeed(seed)}
		Zeroize(seed)
		return kp, nil

	case KeypairSize:
		derived := ed25519.NewKeyFromSeed(b[:SeedSize])
		if subtle.ConstantTimeCompare(derived[SeedSize:], b[SeedSize:]) != 1 {
			Zeroize(derived)
			return nil, fmt.Errorf("%w: public key does not match secret", ErrKeyFormat)
		}
		return &Keypair{priv: derived}, nil

	default:
		return nil, fmt.Errorf("%w: expected %d or %d bytes, got %d",
			ErrKeyFormat, SeedSize, KeypairSize, len(b))
	}
}

// FromBase58 creates a keypair from a base58-encoded secret: either a
// 32-byte seed or a 64-byte full keypair.
// Returns ErrKeyFormat on invalid alphabet or length.
func FromBase58(s string) (*Keypair, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	kp, err := FromBytes(raw)
	Zeroize(raw)
	return kp, err
}

// ToBase58 exports the full 64-byte keypair as base58.
// Exact inverse of FromBase58.
func (k *Keypair) ToBase58() string {
	return base58.Encode(k.priv)
}

// Pubkey returns the derived public key.
// Pure derivation: the same secret always yields the same value.
func (k *Keypair) Pubkey() Pubkey {
	var pk Pubkey
	copy(pk[:], k.priv[SeedSize:])
	return pk
}

// Sign produces an Ed25519 signature over the given digest.
// Ed25519 is deterministic: the same (key, digest) always yields the same
// 64-byte signature.
func (k *Keypair) Sign(digest []byte) []byte {
	return ed25519.Sign(k.priv, digest)
}

// Equal reports whether two keypairs hold the same secret.
// Constant-time comparison.
func (k *Keypair) Equal(other *Keypair) bool {
	if other == nil {
		return false
	}
	return subtle.ConstantTimeCompare(k.priv, other.priv) == 1
}

// Zeroize overwrites the private key with zeros.
// After calling Zeroize, the keypair is no longer usable.
func (k *Keypair) Zeroize() {
	Zeroize(k.priv)
}

// keypairBytes returns the raw 64-byte keypair for storage.
// Package-private: key stores persist this, callers never see it.
func (k *Keypair) keypairBytes() []byte {
	out := make([]byte, KeypairSize)
	copy(out, k.priv)
	return out
}

// Pubkey is a 32-byte Ed25519 public key. Safe to copy and share freely.
type Pubkey [PubkeySize]byte

// PubkeyFromBytes creates a public key from raw bytes.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeySize {
		return pk, fmt.Errorf("%w: expected %d-byte public key, got %d", ErrKeyFormat, PubkeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// PubkeyFromBase58 decodes a base58-encoded public key.
func PubkeyFromBase58(s string) (Pubkey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	return PubkeyFromBytes(raw)
}

// String returns the base58 representation.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns a copy of the raw public key bytes.
func (p Pubkey) Bytes() []byte {
	out := make([]byte, PubkeySize)
	copy(out, p[:])
	return out
}

// Verify checks an Ed25519 signature over msg against this public key.
func (p Pubkey) Verify(msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(p[:], msg, sig)
}

// Address returns the 20-byte short identifier derived from the public key:
// the leading bytes of SHA-256(pubkey). Pure and deterministic.
func (p Pubkey) Address() []byte {
	sum := sha256.Sum256(p[:])
	out := make([]byte, AddressSize)
	copy(out, sum[:AddressSize])
	return out
}

// MarshalJSON encodes the public key as a base58 string.
func (p Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a base58 string.
func (p *Pubkey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := PubkeyFromBase58(s)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
