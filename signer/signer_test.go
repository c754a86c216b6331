package signer

import (
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulknetwork/bulk-keychain-go/codec"
	"github.com/bulknetwork/bulk-keychain-go/crypto"
	"github.com/bulknetwork/bulk-keychain-go/nonce"
	"github.com/bulknetwork/bulk-keychain-go/types"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	kp, err := crypto.Generate()
	require.NoError(t, err)
	t.Cleanup(kp.Zeroize)

	s, err := New(kp)
	require.NoError(t, err)
	return s
}

func limitOrder(t *testing.T, symbol string, isBuy bool, price, size float64, tif types.TimeInForce) *types.Order {
	t.Helper()
	o, err := types.NewLimitOrder(symbol, isBuy, price, size, tif)
	require.NoError(t, err)
	return o
}

func TestNewRejectsNilKeypair(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilKeypair)
}

func TestFromBase58RoundTrip(t *testing.T) {
	kp, err := crypto.Generate()
	require.NoError(t, err)
	defer kp.Zeroize()

	s, err := FromBase58(kp.ToBase58())
	require.NoError(t, err)
	assert.Equal(t, kp.Pubkey(), s.Pubkey())

	_, err = FromBase58("tooshort")
	require.ErrorIs(t, err, crypto.ErrKeyFormat)
}

func TestSignProducesVerifiableTransaction(t *testing.T) {
	s := newTestSigner(t)
	o := limitOrder(t, "BTC-PERP", true, 50_000, 0.5, types.TifGTC)

	tx, err := s.Sign(o)
	require.NoError(t, err)

	assert.Equal(t, s.Pubkey().String(), tx.Signer)
	assert.Equal(t, s.Pubkey().String(), tx.Account)
	assert.NotEmpty(t, tx.TxID)
	require.NoError(t, tx.Verify())
}

func TestSignSameActionTwiceDiffers(t *testing.T) {
	s := newTestSigner(t)
	o := limitOrder(t, "BTC-PERP", true, 50_000, 0.5, types.TifGTC)

	tx1, err := s.Sign(o)
	require.NoError(t, err)
	tx2, err := s.Sign(o)
	require.NoError(t, err)

	// Fresh nonce every call, so signature, digest and ID all change.
	assert.NotEqual(t, tx1.Nonce, tx2.Nonce)
	assert.NotEqual(t, tx1.Signature, tx2.Signature)
	assert.NotEqual(t, tx1.TxID, tx2.TxID)
}

func TestSignWithNonceDeterministic(t *testing.T) {
	s := newTestSigner(t)
	o := limitOrder(t, "BTC-PERP", true, 50_000, 0.5, types.TifGTC)

	tx1, err := s.SignWithNonce(o, 99)
	require.NoError(t, err)
	tx2, err := s.SignWithNonce(o, 99)
	require.NoError(t, err)
	assert.Equal(t, tx1.Signature, tx2.Signature)
	assert.Equal(t, tx1.TxID, tx2.TxID)
}

func TestSignRejectsInvalidAction(t *testing.T) {
	s := newTestSigner(t)
	_, err := s.Sign(&types.Order{Symbol: "", Price: 1, Size: 1, OrderType: types.LimitType(types.TifGTC)})
	require.ErrorIs(t, err, types.ErrInvalidAction)
}

func TestSignGroupAtomic(t *testing.T) {
	s := newTestSigner(t)
	entry := limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC)
	stop := limitOrder(t, "BTC-PERP", false, 48_000, 1, types.TifGTC)
	target := limitOrder(t, "BTC-PERP", false, 52_000, 1, types.TifALO)

	tx, err := s.SignGroup([]types.Action{entry, stop, target})
	require.NoError(t, err)

	g, ok := tx.Action.(*types.Group)
	require.True(t, ok)
	assert.Len(t, g.Orders, 3)
	assert.Same(t, entry, g.Orders[0])
	require.NoError(t, tx.Verify())
}

func TestSignGroupOrderSensitive(t *testing.T) {
	s := newTestSigner(t)
	o1 := limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC)
	o2 := limitOrder(t, "BTC-PERP", false, 48_000, 1, types.TifGTC)
	o3 := limitOrder(t, "BTC-PERP", false, 52_000, 1, types.TifALO)

	tx1, err := s.SignGroup([]types.Action{o1, o2, o3})
	require.NoError(t, err)
	tx2, err := s.SignGroup([]types.Action{o2, o1, o3})
	require.NoError(t, err)

	// Same members, different positions: different payload, different ID.
	assert.NotEqual(t, tx1.TxID, tx2.TxID)
}

func TestSignGroupRejections(t *testing.T) {
	s := newTestSigner(t)

	_, err := s.SignGroup(nil)
	require.ErrorIs(t, err, ErrEmptyGroup)

	o := limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC)
	_, err = s.SignGroup([]types.Action{o, &types.Faucet{}})
	require.ErrorIs(t, err, ErrIneligibleVariant)
	assert.Contains(t, err.Error(), "element 1")

	_, err = s.SignOrderGroup(nil)
	require.ErrorIs(t, err, ErrEmptyGroup)
}

func TestSignAllIndependent(t *testing.T) {
	s := newTestSigner(t)

	actions := make([]types.Action, 100)
	for i := range actions {
		actions[i] = limitOrder(t, "BTC-PERP", i%2 == 0, 50_000+float64(i), 1, types.TifGTC)
	}

	txs, err := s.SignAll(actions)
	require.NoError(t, err)
	require.Len(t, txs, 100)

	for i, tx := range txs {
		require.Same(t, actions[i], tx.Action, "output order must match input order")
		require.NoError(t, tx.Verify(), "transaction %d", i)
		if i > 0 {
			require.Greater(t, tx.Nonce, txs[i-1].Nonce, "nonces must be strictly increasing")
		}
	}
	require.NoError(t, VerifyAll(txs))
}

func TestSignAllFailFastWithIndex(t *testing.T) {
	kp, err := crypto.Generate()
	require.NoError(t, err)
	defer kp.Zeroize()

	// A counter clock makes nonce consumption observable exactly.
	clock, err := nonce.NewClock(nonce.StrategyCounter)
	require.NoError(t, err)
	s, err := WithClock(kp, clock)
	require.NoError(t, err)

	actions := make([]types.Action, 100)
	for i := range actions {
		actions[i] = limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC)
	}
	actions[50] = &types.Order{Symbol: "BTC-PERP", Price: -1, Size: 1, OrderType: types.LimitType(types.TifGTC)}

	before, err := s.clock.Next()
	require.NoError(t, err)

	_, err = s.SignAll(actions)
	var be *BatchElementError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 50, be.Index)
	require.ErrorIs(t, err, codec.ErrRange)

	// Validation failed before any nonce was drawn for the batch.
	after, err := s.clock.Next()
	require.NoError(t, err)
	assert.Equal(t, before+1, after, "failed batch must not consume nonces")
}

func TestSignAllEmpty(t *testing.T) {
	s := newTestSigner(t)
	txs, err := s.SignAll(nil)
	require.NoError(t, err)
	assert.Nil(t, txs)
}

func TestSignAllFrom(t *testing.T) {
	s := newTestSigner(t)

	actions := []types.Action{
		limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC),
		limitOrder(t, "ETH-PERP", false, 3_000, 2, types.TifIOC),
		limitOrder(t, "SOL-PERP", true, 150, 10, types.TifALO),
	}

	txs, err := s.SignAllFrom(actions, 7_000)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i, tx := range txs {
		assert.Equal(t, uint64(7_000+i), tx.Nonce)
		require.NoError(t, tx.Verify())
	}
}

func TestSignFaucet(t *testing.T) {
	s := newTestSigner(t)
	tx, err := s.SignFaucet()
	require.NoError(t, err)
	assert.Equal(t, types.TypeFaucet, tx.Action.Type())
	require.NoError(t, tx.Verify())
}

func TestSignUserSettings(t *testing.T) {
	s := newTestSigner(t)
	tx, err := s.SignUserSettings([]types.LeverageSetting{
		{Symbol: "BTC-PERP", Leverage: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, types.TypeUserSettings, tx.Action.Type())
	require.NoError(t, tx.Verify())

	_, err = s.SignUserSettings(nil)
	require.ErrorIs(t, err, types.ErrInvalidAction)
}

func TestSignAgentWallet(t *testing.T) {
	s := newTestSigner(t)
	agent, err := crypto.Generate()
	require.NoError(t, err)
	defer agent.Zeroize()

	tx, err := s.SignAgentWallet(agent.Pubkey(), false)
	require.NoError(t, err)
	require.NoError(t, tx.Verify())
	assert.False(t, tx.Action.(*types.AgentWallet).Delete)

	revoke, err := s.SignAgentWallet(agent.Pubkey(), true)
	require.NoError(t, err)
	assert.True(t, revoke.Action.(*types.AgentWallet).Delete)
	assert.NotEqual(t, tx.TxID, revoke.TxID)
}

func TestAgentSignsForAccount(t *testing.T) {
	account, err := crypto.Generate()
	require.NoError(t, err)
	defer account.Zeroize()

	agent := newTestSigner(t).ForAccount(account.Pubkey())
	o := limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC)

	tx, err := agent.Sign(o)
	require.NoError(t, err)
	assert.Equal(t, account.Pubkey().String(), tx.Account)
	assert.Equal(t, agent.Pubkey().String(), tx.Signer)
	assert.NotEqual(t, tx.Account, tx.Signer)
	require.NoError(t, tx.Verify())
}

func TestWithClockStrategy(t *testing.T) {
	kp, err := crypto.Generate()
	require.NoError(t, err)
	defer kp.Zeroize()

	clock, err := nonce.NewClock(nonce.StrategyCounter)
	require.NoError(t, err)
	s, err := WithClock(kp, clock)
	require.NoError(t, err)

	tx1, err := s.Sign(&types.Faucet{})
	require.NoError(t, err)
	tx2, err := s.Sign(&types.Faucet{})
	require.NoError(t, err)
	assert.Equal(t, tx1.Nonce+1, tx2.Nonce)
}

func TestPrepareFinalize(t *testing.T) {
	// The "wallet" holds the key; Prepare and Finalize never see it.
	wallet, err := crypto.Generate()
	require.NoError(t, err)
	defer wallet.Zeroize()

	o := limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC)

	prep, err := Prepare(o, wallet.Pubkey(), wallet.Pubkey(), 42)
	require.NoError(t, err)
	assert.Len(t, prep.Digest, 32)
	assert.NotEmpty(t, prep.DigestBase58())
	assert.NotEmpty(t, prep.DigestBase64())
	assert.Len(t, prep.DigestHex(), 64)

	sig := base58.Encode(wallet.Sign(prep.Digest))
	tx, err := Finalize(prep, sig)
	require.NoError(t, err)
	assert.Equal(t, prep.TxID, tx.TxID)
	require.NoError(t, tx.Verify())
}

func TestFinalizeRejectsWrongSignature(t *testing.T) {
	wallet, err := crypto.Generate()
	require.NoError(t, err)
	defer wallet.Zeroize()
	stranger, err := crypto.Generate()
	require.NoError(t, err)
	defer stranger.Zeroize()

	o := limitOrder(t, "BTC-PERP", true, 50_000, 1, types.TifGTC)
	prep, err := Prepare(o, wallet.Pubkey(), wallet.Pubkey(), 42)
	require.NoError(t, err)

	_, err = Finalize(prep, base58.Encode(stranger.Sign(prep.Digest)))
	require.ErrorIs(t, err, types.ErrInvalidSignature)

	_, err = Finalize(nil, "abc")
	require.ErrorIs(t, err, types.ErrInvalidTransaction)
}

func TestBatchElementErrorUnwraps(t *testing.T) {
	inner := types.ErrInvalidAction
	err := error(&BatchElementError{Index: 3, Err: inner})
	require.ErrorIs(t, err, types.ErrInvalidAction)

	var be *BatchElementError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 3, be.Index)
	assert.Contains(t, err.Error(), "batch element 3")
}
