package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

func fullFeatureVector() types.FeatureVector {
	return types.FeatureVector{
		TimeToClose: types.TimeToCloseFeatures{RampMultiplier: 1.0},
		TradeSize:   &types.TradeSizeFeatures{SizeTailScore: 0.9, IsLargeTrade: true},
		OrderBook:   types.OrderBookFeatures{BookImbalanceScore: 0.8, ThinOppositeScore: 0.8, Imbalance: 0.6, HasBook: true},
		Wallet:      &types.WalletFeatures{WalletNewScore: 0.9, IsNewAccount: true},
		Impact:      &types.ImpactFeatures{ImpactScore: 0.5},
		Burst:       types.BurstFeatures{BurstScore: 0.3, BurstDetected: true},
		ChangePoint: types.ChangePointFeatures{ChangePointScore: 0.2, RegimeShift: types.RegimeIncrease},
	}
}

func TestComputeAnomaly_InRange(t *testing.T) {
	fv := fullFeatureVector()
	a := computeAnomaly(fv)
	assert.GreaterOrEqual(t, a, 0.0)
	assert.LessOrEqual(t, a, 1.0)
}

func TestComputeTripleSignal_Scenario3True(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	fv := types.FeatureVector{
		TradeSize: &types.TradeSizeFeatures{SizeTailScore: 0.95},
		OrderBook: types.OrderBookFeatures{BookImbalanceScore: 0.80, ThinOppositeScore: 0.75},
		Wallet:    &types.WalletFeatures{WalletNewScore: 0.85, ActivityScore: 0.00},
	}
	assert.True(t, computeTripleSignal(cfg, fv))
}

func TestComputeTripleSignal_Scenario3False(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	fv := types.FeatureVector{
		TradeSize: &types.TradeSizeFeatures{SizeTailScore: 0.899},
		OrderBook: types.OrderBookFeatures{BookImbalanceScore: 0.80, ThinOppositeScore: 0.75},
		Wallet:    &types.WalletFeatures{WalletNewScore: 0.85, ActivityScore: 0.80},
	}
	assert.False(t, computeTripleSignal(cfg, fv))
}

func TestComputeTripleSignal_Monotone(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	base := types.FeatureVector{
		TradeSize: &types.TradeSizeFeatures{SizeTailScore: 0.5},
		OrderBook: types.OrderBookFeatures{BookImbalanceScore: 0.5, ThinOppositeScore: 0.5},
		Wallet:    &types.WalletFeatures{WalletNewScore: 0.5, ActivityScore: 0.5},
	}
	before := computeTripleSignal(cfg, base)

	raised := base
	raised.TradeSize = &types.TradeSizeFeatures{SizeTailScore: 1.0}
	after := computeTripleSignal(cfg, raised)

	if before {
		assert.True(t, after, "raising an input score must not flip true to false")
	}
}

func TestBucketSignalStrength_ExactThresholds(t *testing.T) {
	assert.Equal(t, types.SignalExtreme, types.BucketSignalStrength(0.85))
	assert.Equal(t, types.SignalStrong, types.BucketSignalStrength(0.70))
	assert.Equal(t, types.SignalModerate, types.BucketSignalStrength(0.50))
	assert.Equal(t, types.SignalWeak, types.BucketSignalStrength(0.30))
	assert.Equal(t, types.SignalNone, types.BucketSignalStrength(0.29))
}

func TestComputeExecution_InRange(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	fv := fullFeatureVector()
	book := &types.BookMetrics{SpreadBps: 50, TotalDepthUSD: 200, ThinSideRatio: 0.5}
	res := computeExecution(cfg, fv, book, 100)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
}

func TestComputeEdge_ClampedProbability(t *testing.T) {
	fv := fullFeatureVector()
	res := computeEdge(fv, 0.9, 0.8, 0.99)
	assert.LessOrEqual(t, res.EstimatedProbability, 0.99)
	assert.GreaterOrEqual(t, res.EstimatedProbability, 0.01)
}
