package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// fakeManager is an in-memory stand-in for Manager so the wallet cache
// seam can be tested without a live Redis instance.
type fakeManager struct {
	store map[string][]byte
	calls int
}

func newFakeManager() *fakeManager { return &fakeManager{store: make(map[string][]byte)} }

func (f *fakeManager) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.store[key]
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeManager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = data
	return nil
}

func (f *fakeManager) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func (f *fakeManager) Health(ctx context.Context) bool { return true }
func (f *fakeManager) Close() error                    { return nil }

func TestWalletCache_GetOrFetch_MissesThenHits(t *testing.T) {
	fm := newFakeManager()
	wc := NewWalletCache(fm, config.DefaultCacheConfig())

	ts := int64(1700000000000)
	fetched := types.WalletEnrichment{
		Address:            "0xabc",
		FirstSeenTimestamp: &ts,
		TransactionCount:   5,
		Source:             types.WalletSourceUpstream,
	}

	calls := 0
	fetch := func(ctx context.Context, address string) (types.WalletEnrichment, error) {
		calls++
		return fetched, nil
	}

	got, err := wc.GetOrFetch(context.Background(), "0xabc", fetch)
	require.NoError(t, err)
	assert.Equal(t, fetched.TransactionCount, got.TransactionCount)
	assert.Equal(t, 1, calls)

	// Second call should hit the cache, not invoke fetch again.
	got2, err := wc.GetOrFetch(context.Background(), "0xabc", fetch)
	require.NoError(t, err)
	assert.Equal(t, fetched.TransactionCount, got2.TransactionCount)
	assert.Equal(t, 1, calls, "fetch should not be called again on a cache hit")
}

func TestWalletCache_PutThenGet_RoundTrips(t *testing.T) {
	fm := newFakeManager()
	wc := NewWalletCache(fm, config.DefaultCacheConfig())

	enrichment := types.WalletEnrichment{Address: "0xdef", TransactionCount: 42, Source: types.WalletSourceFallback}
	require.NoError(t, wc.Put(context.Background(), enrichment))

	got, err := wc.Get(context.Background(), "0xdef")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.TransactionCount)
}

func TestNoopManager_AlwaysMisses(t *testing.T) {
	var mgr Manager = NoopManager{}
	var dest types.WalletEnrichment
	err := mgr.Get(context.Background(), "anything", &dest)
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, mgr.Set(context.Background(), "anything", dest, time.Minute))
	assert.False(t, mgr.Health(context.Background()))
}
