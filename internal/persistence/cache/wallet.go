package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// WalletCache fronts the block-explorer collaborator with the
// walletCache contract: first-seen/transaction-count data is cached for
// >=30 days since it changes slowly and the collaborator is rate
// limited (§5, §6).
type WalletCache struct {
	mgr Manager
	ttl time.Duration
}

// NewWalletCache builds a WalletCache using cfg's configured TTL.
func NewWalletCache(mgr Manager, cfg config.CacheConfig) *WalletCache {
	return &WalletCache{mgr: mgr, ttl: time.Duration(cfg.WalletTTLDays) * 24 * time.Hour}
}

// Get returns the cached enrichment for address, or ErrMiss.
func (c *WalletCache) Get(ctx context.Context, address string) (types.WalletEnrichment, error) {
	var enrichment types.WalletEnrichment
	err := c.mgr.Get(ctx, WalletCacheKey(address), &enrichment)
	return enrichment, err
}

// Put caches enrichment for the configured wallet TTL. FirstSeenTimestamp
// is monotone by contract (types.WalletEnrichment doc): callers must not
// pass a fresher-but-later-observed timestamp over an earlier cached one.
func (c *WalletCache) Put(ctx context.Context, enrichment types.WalletEnrichment) error {
	return c.mgr.Set(ctx, WalletCacheKey(enrichment.Address), enrichment, c.ttl)
}

// GetOrFetch returns the cached enrichment if present; otherwise it
// calls fetch, caches the result (unless the fetch itself errored), and
// returns it. This is the seam collaborators.BlockExplorerClient callers
// use to avoid re-hitting the rate-limited upstream for a wallet already
// seen within the TTL window.
func (c *WalletCache) GetOrFetch(ctx context.Context, address string, fetch func(context.Context, string) (types.WalletEnrichment, error)) (types.WalletEnrichment, error) {
	cached, err := c.Get(ctx, address)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		return types.WalletEnrichment{}, err
	}

	fetched, err := fetch(ctx, address)
	if err != nil {
		return types.WalletEnrichment{}, err
	}
	if putErr := c.Put(ctx, fetched); putErr != nil {
		return fetched, putErr
	}
	return fetched, nil
}
