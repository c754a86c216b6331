// Package vectors generates cross-implementation test vectors for the BULK
// signing system.
//
// Any conforming implementation, in any language, must reproduce these
// outputs bit-exactly from the same inputs: the canonical payload, the
// digest, the transaction ID, and the Ed25519 signature.
//
// SECURITY: vectors use a well-known test key. NEVER use it in production.
package vectors

import (
	"encoding/json"
	"time"
)

// FormatVersion identifies the vector file layout.
const FormatVersion = "1.0.0"

// File is the root structure of a generated test vector file.
type File struct {
	// Version of the test vector format.
	Version string `json:"version"`

	// Generated timestamp in RFC3339 format.
	Generated time.Time `json:"generated"`

	// Description of this test vector file.
	Description string `json:"description"`

	// SignerSeedHex is the 32-byte Ed25519 seed of the well-known test
	// key, hex encoded.
	SignerSeedHex string `json:"signer_seed_hex"`

	// SignerPubkey is the test key's public key, base58 encoded.
	SignerPubkey string `json:"signer_pubkey"`

	// Vectors is the list of test vectors.
	Vectors []Vector `json:"vectors"`
}

// Vector is a single cross-implementation test case.
type Vector struct {
	// Name uniquely identifies this vector.
	Name string `json:"name"`

	// Description explains what the vector exercises.
	Description string `json:"description"`

	// Category groups related vectors (encoding, digest, signature, edge_case).
	Category string `json:"category"`

	// Action is the input action in the venue's discriminated JSON form.
	Action json.RawMessage `json:"action"`

	// Nonce bound into the digest.
	Nonce uint64 `json:"nonce"`

	// PayloadHex is the expected canonical payload, hex encoded.
	PayloadHex string `json:"payload_hex"`

	// DigestHex is the expected SHA-256 digest of payload plus nonce,
	// hex encoded.
	DigestHex string `json:"digest_hex"`

	// TxID is the expected transaction ID, the base58 digest.
	TxID string `json:"tx_id"`

	// Signature is the expected Ed25519 signature over the digest by the
	// well-known test key, base58 encoded.
	Signature string `json:"signature"`
}
