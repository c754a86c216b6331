package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

// The encoder treats symbols as opaque byte strings. It never normalizes,
// so two Unicode representations of the "same" text are two different
// payloads, and whatever bytes the caller provides come back bit-exact.
// Symbol registration is the venue's job; byte fidelity is ours.

func TestEncodeDoesNotNormalizeUnicode(t *testing.T) {
	// U+00E9 (precomposed) vs U+0065 U+0301 (decomposed).
	nfc := "café-PERP"
	nfd := "café-PERP"
	require.NotEqual(t, nfc, nfd)
	require.Equal(t, nfc, norm.NFC.String(nfd), "test strings must be canonically equivalent")

	p1, err := EncodeAction(&CancelAll{Symbols: []string{nfc}})
	require.NoError(t, err)
	p2, err := EncodeAction(&CancelAll{Symbols: []string{nfd}})
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2, "canonically equivalent forms must stay distinct payloads")
}

func TestEncodeUnicodeSymbolDeterministic(t *testing.T) {
	for _, symbol := range []string{
		"BTC-PERP",
		"btc/usd₿", // bitcoin sign
		norm.NFD.String("café"),
		"日本-PERP",
	} {
		o, err := NewLimitOrder(symbol, true, 1, 1, TifGTC)
		require.NoError(t, err)

		first, err := EncodeAction(o)
		require.NoError(t, err)
		again, err := EncodeAction(o)
		require.NoError(t, err)
		assert.Equal(t, first, again, "symbol %q", symbol)

		// The symbol's exact bytes survive a JSON round trip too.
		data, err := MarshalAction(o)
		require.NoError(t, err)
		back, err := UnmarshalAction(data)
		require.NoError(t, err)
		assert.Equal(t, symbol, back.(*Order).Symbol)
	}
}
