package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bulknetwork/bulk-keychain-go/types"
)

func TestAssertCanonicalDeterminismAllVariants(t *testing.T) {
	order, err := types.NewLimitOrder("BTC-PERP", true, 50_000.5, 0.25, types.TifGTC)
	require.NoError(t, err)
	group, err := types.NewGroup([]*types.Order{order})
	require.NoError(t, err)

	actions := []types.Action{
		order,
		&types.CancelAll{Symbols: []string{"BTC-PERP", "ETH-PERP"}},
		group,
		&types.Faucet{},
		&types.UserSettings{MaxLeverage: []types.LeverageSetting{
			{Symbol: "BTC-PERP", Leverage: 20},
			{Symbol: "ETH-PERP", Leverage: 10},
		}},
	}

	for _, a := range actions {
		t.Run(string(a.Type()), func(t *testing.T) {
			AssertCanonicalDeterminism(t, a, 100)
			AssertDigestStability(t, a, 42, 10)
		})
	}
}
