package cache

import "github.com/sawpanic/marketintel/internal/types"

// Key builders for the nine cache contracts named in §6 (three keyed by
// wallet address, the rest by token). Each
// returns a namespaced string key; the value shape is owned by the
// caller (state/features/collaborators), this package only owns the
// key-naming convention and TTL plumbing.
const keyPrefix = "marketintel:"

func WalletCacheKey(address string) string {
	return keyPrefix + "wallet:" + address
}

func WalletProfileKey(address string) string {
	return keyPrefix + "walletProfile:" + address
}

func WalletFirstSeenKey(address string) string {
	return keyPrefix + "walletFirstSeen:" + address
}

func OrderbookStateKey(tokenID types.TokenID) string {
	return keyPrefix + "orderbookState:" + string(tokenID)
}

func ScoreCacheKey(tokenID types.TokenID) string {
	return keyPrefix + "scoreCache:" + string(tokenID)
}

func FeatureCacheKey(tokenID types.TokenID) string {
	return keyPrefix + "featureCache:" + string(tokenID)
}

func TradeWindowKey(tokenID types.TokenID) string {
	return keyPrefix + "tradeWindow:" + string(tokenID)
}

func HawkesStateKey(tokenID types.TokenID) string {
	return keyPrefix + "hawkesState:" + string(tokenID)
}

func CPDStateKey(tokenID types.TokenID) string {
	return keyPrefix + "cpdState:" + string(tokenID)
}
