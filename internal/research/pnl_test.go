package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/types"
)

func eventAtPrice(price, notional float64, won bool) types.ContrarianEvent {
	return types.ContrarianEvent{
		TradePrice:    price,
		TradeNotional: notional,
		OutcomeWon:    won,
	}
}

// TestComputePnL_ScenarioS1: 50% win rate at avg price 0.90 is unprofitable.
func TestComputePnL_ScenarioS1(t *testing.T) {
	events := []types.ContrarianEvent{
		eventAtPrice(0.90, 100, true),
		eventAtPrice(0.90, 100, false),
	}
	m := ComputePnL(events)
	assert.InDelta(t, 10, m.TotalWinPnL, 1e-9)
	assert.InDelta(t, -90, m.TotalLossPnL, 1e-9)
	assert.InDelta(t, -80, m.PnL, 1e-9)
	assert.InDelta(t, -0.40, m.ROI, 1e-9)
	assert.InDelta(t, 0.90, m.BreakEvenRate, 1e-9)
	assert.InDelta(t, -40, m.EdgePoints, 1e-9)
	assert.False(t, m.IsProfitable)
	assert.Contains(t, m.Warnings[len(m.Warnings)-1], "break-even")
}

// TestComputePnL_ScenarioS2: 50% win rate at avg price 0.35 is profitable.
func TestComputePnL_ScenarioS2(t *testing.T) {
	events := []types.ContrarianEvent{
		eventAtPrice(0.35, 100, true),
		eventAtPrice(0.35, 100, false),
	}
	m := ComputePnL(events)
	assert.InDelta(t, 30, m.PnL, 1e-9)
	assert.InDelta(t, 0.15, m.ROI, 1e-9)
	assert.InDelta(t, 15, m.EdgePoints, 1e-9)
	assert.Greater(t, m.KellyFraction, 0.0)
	assert.True(t, m.IsProfitable)
}

func TestComputePnL_Empty(t *testing.T) {
	m := ComputePnL(nil)
	assert.Equal(t, 0, m.N)
	assert.NotEmpty(t, m.Warnings)
}

func TestKellyFraction_BoundaryPrices(t *testing.T) {
	assert.Equal(t, 0.0, kellyFraction(0.9, 0))
	assert.Equal(t, 0.0, kellyFraction(0.9, 1))
}

func TestKellyFraction_NeverNegative(t *testing.T) {
	k := kellyFraction(0.1, 0.5)
	assert.GreaterOrEqual(t, k, 0.0)
}
