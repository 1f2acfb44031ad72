package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

func TestComputeFeatures_NoTradeNoBook(t *testing.T) {
	eng := state.NewEngine(config.DefaultStateConfig())
	comp := NewComputer(config.DefaultFeatureConfig(), config.DefaultStateConfig(), eng)

	fv := comp.ComputeFeatures("tok", "cond-1", 0, Inputs{EndDateMS: 3_600_000})

	assert.Nil(t, fv.TradeSize)
	assert.Nil(t, fv.Wallet)
	assert.Nil(t, fv.Impact)
	assert.False(t, fv.OrderBook.HasBook)
	assert.Equal(t, 1.0, fv.OrderBook.SpreadScore)
	assert.Equal(t, 0.0, fv.OrderBook.DepthScore)
	assert.False(t, fv.OrderBook.IsAsymmetric)
}

func TestComputeFeatures_DegradedSampleTradeSize(t *testing.T) {
	eng := state.NewEngine(config.DefaultStateConfig())
	cfg := config.DefaultFeatureConfig()
	comp := NewComputer(cfg, config.DefaultStateConfig(), eng)

	tok := types.TokenID("tok-degraded")
	trade := types.Trade{TokenID: tok, TimestampMS: 0, Price: 0.5, Size: 100, Side: types.Buy}
	eng.RecordTrade(tok, trade)

	fv := comp.ComputeFeatures(tok, "cond", 0, Inputs{EndDateMS: 1000, Trade: &trade})
	require.NotNil(t, fv.TradeSize)
	assert.Equal(t, 50.0, fv.TradeSize.Percentile)
	assert.Equal(t, 0.0, fv.TradeSize.RobustZ)
	assert.Equal(t, 1, fv.TradeSize.DegradedSampleCount)
}

func TestComputeFeatures_RampMultiplierAtZeroAndFar(t *testing.T) {
	eng := state.NewEngine(config.DefaultStateConfig())
	cfg := config.DefaultFeatureConfig()
	comp := NewComputer(cfg, config.DefaultStateConfig(), eng)

	fvNow := comp.ComputeFeatures("tok", "cond", 0, Inputs{EndDateMS: 0})
	assert.InDelta(t, 1+cfg.RampAlpha, fvNow.TimeToClose.RampMultiplier, 1e-9)

	fvFar := comp.ComputeFeatures("tok", "cond", 0, Inputs{EndDateMS: 1000 * 60 * 60 * 24 * 365})
	assert.InDelta(t, 1.0, fvFar.TimeToClose.RampMultiplier, 0.01)
}

func TestComputeFeatures_NoTradeZone(t *testing.T) {
	eng := state.NewEngine(config.DefaultStateConfig())
	cfg := config.DefaultFeatureConfig()
	comp := NewComputer(cfg, config.DefaultStateConfig(), eng)

	fv := comp.ComputeFeatures("tok", "cond", 1_000_000, Inputs{EndDateMS: 1_000_000 + 60_000})
	assert.True(t, fv.TimeToClose.InNoTradeZone)

	fv2 := comp.ComputeFeatures("tok", "cond", 1_000_000, Inputs{EndDateMS: 1_000_000 + 300_000})
	assert.False(t, fv2.TimeToClose.InNoTradeZone)
}

func TestComputeFeatures_OrderBookAsymmetric(t *testing.T) {
	eng := state.NewEngine(config.DefaultStateConfig())
	comp := NewComputer(config.DefaultFeatureConfig(), config.DefaultStateConfig(), eng)

	metrics := &types.BookMetrics{SpreadBps: 10, TotalDepthUSD: 50, ThinSideRatio: 0.2, Imbalance: 0.6}
	fv := comp.ComputeFeatures("tok", "cond", 0, Inputs{EndDateMS: 1000, Book: metrics})
	assert.True(t, fv.OrderBook.IsAsymmetric)
	assert.True(t, fv.OrderBook.HasBook)
}

func TestComputeWallet_NilWhenAbsent(t *testing.T) {
	assert.Nil(t, computeWallet(nil, 0))
}

func TestComputeWallet_NewAccountFlag(t *testing.T) {
	firstSeen := int64(0)
	w := &types.WalletEnrichment{FirstSeenTimestamp: &firstSeen, TransactionCount: 2}
	nowMS := int64(3 * 24 * 60 * 60 * 1000) // 3 days later
	wf := computeWallet(w, nowMS)
	require.NotNil(t, wf)
	assert.True(t, wf.IsNewAccount)
	assert.True(t, wf.IsLowActivity)
}
