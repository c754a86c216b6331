// Package testing provides shared test helpers for the keychain.
package testing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bulknetwork/bulk-keychain-go/types"
)

// AssertCanonicalDeterminism validates that an action's canonical encoding
// is byte-identical across repeated calls.
//
// SECURITY: a non-deterministic encoding makes the same intent hash to
// different digests on different calls, so a signature produced here would
// fail verification at the venue. Any source of iteration-order or
// formatting variance in an encoder shows up as a failure of this check.
//
// Usage:
//
//	func TestOrderDeterminism(t *testing.T) {
//	    o, _ := types.NewLimitOrder("BTC-PERP", true, 50_000, 1, types.TifGTC)
//	    bulktesting.AssertCanonicalDeterminism(t, o, 100)
//	}
func AssertCanonicalDeterminism(t *testing.T, a types.Action, iterations int) {
	t.Helper()

	if iterations < 2 {
		t.Fatal("AssertCanonicalDeterminism requires at least 2 iterations")
	}

	first, err := types.EncodeAction(a)
	require.NoError(t, err, "EncodeAction failed on first call")
	require.NotEmpty(t, first, "EncodeAction returned an empty payload")

	for i := 1; i < iterations; i++ {
		result, err := types.EncodeAction(a)
		require.NoError(t, err, "EncodeAction failed on iteration %d", i)
		if !bytes.Equal(first, result) {
			t.Fatalf("EncodeAction returned different bytes on iteration %d.\n"+
				"First: %x\n"+
				"Got:   %x\n"+
				"This indicates non-deterministic canonical encoding.",
				i, first, result)
		}
	}
}

// AssertDigestStability validates that the digest of (action, nonce) is
// reproducible and that changing the nonce changes the digest.
func AssertDigestStability(t *testing.T, a types.Action, nonce uint64, iterations int) {
	t.Helper()

	first, err := types.DigestAction(a, nonce)
	require.NoError(t, err)

	for i := 1; i < iterations; i++ {
		d, err := types.DigestAction(a, nonce)
		require.NoError(t, err, "DigestAction failed on iteration %d", i)
		require.Equal(t, first, d, "digest diverged on iteration %d", i)
	}

	shifted, err := types.DigestAction(a, nonce+1)
	require.NoError(t, err)
	require.NotEqual(t, first, shifted, "nonce must be bound into the digest")
}
