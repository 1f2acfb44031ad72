package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/types"
)

func TestKeyBuilders_AreNamespacedAndDistinct(t *testing.T) {
	token := types.TokenID("token-1")
	keys := []string{
		WalletCacheKey("0xabc"),
		WalletProfileKey("0xabc"),
		WalletFirstSeenKey("0xabc"),
		OrderbookStateKey(token),
		ScoreCacheKey(token),
		FeatureCacheKey(token),
		TradeWindowKey(token),
		HawkesStateKey(token),
		CPDStateKey(token),
	}

	seen := make(map[string]bool)
	for _, k := range keys {
		assert.Contains(t, k, keyPrefix)
		assert.False(t, seen[k], "key %s collided with another contract", k)
		seen[k] = true
	}
}
