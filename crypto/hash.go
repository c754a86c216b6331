package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// HashSize is the size of an identifier hash in bytes.
const HashSize = 32

// Hash is a 32-byte identifier: order IDs, client order IDs, and transaction
// IDs all use this representation.
type Hash [HashSize]byte

// RandomHash generates a random hash, typically for client order IDs.
// Returns ErrEntropy if the secure random source fails.
func RandomHash() (Hash, error) {
	var h Hash
	if _, err := rand.Read(h[:]); err != nil {
		return Hash{}, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return h, nil
}

// HashFromPayload computes SHA-256 over the given bytes. This matches the
// venue's server-side ID generation for canonically encoded transactions.
func HashFromPayload(b []byte) Hash {
	return sha256.Sum256(b)
}

// HashFromBytes creates a hash from raw bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: expected %d-byte hash, got %d", ErrKeyFormat, HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromBase58 decodes a base58-encoded hash.
func HashFromBase58(s string) (Hash, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	return HashFromBytes(raw)
}

// String returns the base58 representation.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// Bytes returns a copy of the raw hash bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// IsZero reports whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalJSON encodes the hash as a base58 string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a base58 string.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := HashFromBase58(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}
