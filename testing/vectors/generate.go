package vectors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"github.com/bulknetwork/bulk-keychain-go/crypto"
	"github.com/bulknetwork/bulk-keychain-go/types"
)

// testKeySeedString feeds the well-known test key. The seed is its SHA-256,
// so other implementations can derive the same key without sharing binary
// fixtures.
const testKeySeedString = "bulk-keychain-test-vector-seed-ed25519"

// WellKnownKeypair returns the deterministic test keypair every vector is
// signed with.
//
// SECURITY: testing only. The seed is public by construction.
func WellKnownKeypair() (*crypto.Keypair, error) {
	seed := sha256.Sum256([]byte(testKeySeedString))
	return crypto.FromBytes(seed[:])
}

// vectorCase pairs an action with its nonce and metadata before expected
// outputs are computed.
type vectorCase struct {
	name        string
	description string
	category    string
	action      types.Action
	nonce       uint64
}

func cases() ([]vectorCase, error) {
	kp, err := WellKnownKeypair()
	if err != nil {
		return nil, err
	}
	defer kp.Zeroize()
	agentPk := kp.Pubkey()

	limitBuy, err := types.NewLimitOrder("BTC-PERP", true, 50_000.5, 0.25, types.TifGTC)
	if err != nil {
		return nil, err
	}
	marketSell, err := types.NewMarketOrder("ETH-PERP", false, 2)
	if err != nil {
		return nil, err
	}
	clientID := crypto.HashFromPayload([]byte("client-order-1"))
	tagged := *limitBuy
	tagged.ClientID = &clientID

	stop, err := types.NewLimitOrder("BTC-PERP", false, 48_000, 0.25, types.TifGTC)
	if err != nil {
		return nil, err
	}
	group, err := types.NewGroup([]*types.Order{limitBuy, stop})
	if err != nil {
		return nil, err
	}

	return []vectorCase{
		{
			name:        "limit_buy_gtc",
			description: "resting limit buy, fractional price and size",
			category:    "encoding",
			action:      limitBuy,
			nonce:       1,
		},
		{
			name:        "market_sell",
			description: "market order encodes as a trigger with zero prices",
			category:    "encoding",
			action:      marketSell,
			nonce:       2,
		},
		{
			name:        "order_with_client_id",
			description: "client order ID adds a presence flag and 32 raw bytes",
			category:    "encoding",
			action:      &tagged,
			nonce:       3,
		},
		{
			name:        "cancel",
			description: "cancel by venue order ID",
			category:    "encoding",
			action:      &types.Cancel{Symbol: "BTC-PERP", OrderID: crypto.HashFromPayload([]byte("order-to-cancel"))},
			nonce:       4,
		},
		{
			name:        "cancel_all_empty",
			description: "empty symbol list cancels across all symbols",
			category:    "edge_case",
			action:      &types.CancelAll{},
			nonce:       5,
		},
		{
			name:        "cancel_all_two_symbols",
			description: "symbol order is encoded positionally",
			category:    "encoding",
			action:      &types.CancelAll{Symbols: []string{"BTC-PERP", "ETH-PERP"}},
			nonce:       6,
		},
		{
			name:        "group_bracket",
			description: "two-leg group under one nonce and signature",
			category:    "encoding",
			action:      group,
			nonce:       7,
		},
		{
			name:        "faucet",
			description: "faucet payload is the bare domain tag",
			category:    "edge_case",
			action:      &types.Faucet{},
			nonce:       8,
		},
		{
			name:        "user_settings",
			description: "per-symbol leverage settings, pair order preserved",
			category:    "encoding",
			action: &types.UserSettings{MaxLeverage: []types.LeverageSetting{
				{Symbol: "BTC-PERP", Leverage: 20},
				{Symbol: "ETH-PERP", Leverage: 10},
			}},
			nonce: 9,
		},
		{
			name:        "agent_wallet_authorize",
			description: "agent key authorization",
			category:    "encoding",
			action:      &types.AgentWallet{Agent: agentPk},
			nonce:       10,
		},
		{
			name:        "nonce_zero",
			description: "nonce zero is valid and binds eight zero bytes",
			category:    "digest",
			action:      &types.Faucet{},
			nonce:       0,
		},
		{
			name:        "nonce_max",
			description: "maximum nonce exercises full little-endian width",
			category:    "digest",
			action:      &types.Faucet{},
			nonce:       ^uint64(0),
		},
	}, nil
}

// Generate builds the full vector file by running the reference
// implementation over every case with the well-known key.
//
// Output is deterministic except for the Generated timestamp.
func Generate() (*File, error) {
	kp, err := WellKnownKeypair()
	if err != nil {
		return nil, err
	}
	defer kp.Zeroize()

	seed := sha256.Sum256([]byte(testKeySeedString))

	cs, err := cases()
	if err != nil {
		return nil, err
	}

	file := &File{
		Version:       FormatVersion,
		Generated:     time.Now().UTC(),
		Description:   "BULK signing test vectors: canonical encoding, digests, transaction IDs and Ed25519 signatures",
		SignerSeedHex: hex.EncodeToString(seed[:]),
		SignerPubkey:  kp.Pubkey().String(),
		Vectors:       make([]Vector, 0, len(cs)),
	}

	for _, c := range cs {
		actionJSON, err := types.MarshalAction(c.action)
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", c.name, err)
		}
		payload, err := types.EncodeAction(c.action)
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", c.name, err)
		}
		digest := types.Digest(payload, c.nonce)

		file.Vectors = append(file.Vectors, Vector{
			Name:        c.name,
			Description: c.description,
			Category:    c.category,
			Action:      actionJSON,
			Nonce:       c.nonce,
			PayloadHex:  hex.EncodeToString(payload),
			DigestHex:   hex.EncodeToString(digest.Bytes()),
			TxID:        digest.String(),
			Signature:   base58.Encode(kp.Sign(digest[:])),
		})
	}
	return file, nil
}
