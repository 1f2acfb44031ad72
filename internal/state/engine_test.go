package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

func TestEngine_RecordTradeAndQuantile(t *testing.T) {
	e := NewEngine(config.DefaultStateConfig())
	tok := types.TokenID("tok-a")
	for i := 1; i <= 100; i++ {
		e.RecordTrade(tok, mkTrade(int64(i)*1000, 1, float64(i)))
	}
	rank := e.TradeSizePercentileRank(tok, 50)
	assert.InDelta(t, 50, rank, 10)
	assert.Equal(t, 100, e.TradeCount(tok, 100_000))
}

func TestEngine_UnknownTokenDefaults(t *testing.T) {
	e := NewEngine(config.DefaultStateConfig())
	tok := types.TokenID("never-seen")
	assert.Equal(t, 0, e.TradeCount(tok, 0))
	assert.Equal(t, 50.0, e.TradeSizePercentileRank(tok, 10))
	_, _, ok := e.LastBook(tok)
	assert.False(t, ok)
}

func TestEngine_OrderbookFeedsImbalanceCUSUM(t *testing.T) {
	e := NewEngine(config.DefaultStateConfig())
	tok := types.TokenID("tok-b")
	ts := int64(0)
	for i := 0; i < 10; i++ {
		e.RecordOrderbook(tok, types.BookMetrics{SpreadBps: 20, Imbalance: 0.0}, ts)
		ts += 1000
	}
	alarmed := false
	for i := 0; i < 50; i++ {
		e.RecordOrderbook(tok, types.BookMetrics{SpreadBps: 20, Imbalance: 0.9}, ts)
		ts += 1000
		if e.CUSUMImbalance(tok).Alarmed {
			alarmed = true
			break
		}
	}
	assert.True(t, alarmed)
}

func TestEngine_HawkesIntensityAcrossTokensIsolated(t *testing.T) {
	e := NewEngine(config.DefaultStateConfig())
	a := types.TokenID("a")
	b := types.TokenID("b")
	for i := 0; i < 20; i++ {
		e.RecordTrade(a, mkTrade(int64(i)*100, 1, 1))
	}
	assert.True(t, e.IsBurst(a, 2000))
	assert.False(t, e.IsBurst(b, 2000))
}

func TestEngine_PriceWindow(t *testing.T) {
	e := NewEngine(config.DefaultStateConfig())
	tok := types.TokenID("tok-c")
	e.RecordTrade(tok, mkTrade(0, 0.4, 1))
	e.RecordTrade(tok, mkTrade(30_000, 0.5, 1))
	e.RecordTrade(tok, mkTrade(60_000, 0.6, 1))

	latest, past, ok := e.PriceWindow(tok, 60_000, 30_000)
	assert.True(t, ok)
	assert.Equal(t, 0.6, latest)
	assert.Equal(t, 0.5, past)
}
