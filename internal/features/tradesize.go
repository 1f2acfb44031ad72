package features

import (
	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

type breakpoint struct {
	percentile float64
	score      float64
}

// sizeTailBreakpoints is the piecewise-linear percentile→raw-score
// mapping from §4.B.2: 0→0.5 over [0,95], 0.5→0.9 over [95,99],
// 0.9→0.98 over [99,99.9], 0.98→1.0 thereafter.
var sizeTailBreakpoints = []breakpoint{
	{0, 0},
	{95, 0.5},
	{99, 0.9},
	{99.9, 0.98},
	{100, 1.0},
}

func rawSizeTailScore(percentile float64) float64 {
	if percentile <= 0 {
		return 0
	}
	if percentile >= 100 {
		return 1.0
	}
	for i := 1; i < len(sizeTailBreakpoints); i++ {
		lo, hi := sizeTailBreakpoints[i-1], sizeTailBreakpoints[i]
		if percentile <= hi.percentile {
			if hi.percentile == lo.percentile {
				return hi.score
			}
			frac := (percentile - lo.percentile) / (hi.percentile - lo.percentile)
			return lo.score + frac*(hi.score-lo.score)
		}
	}
	return 1.0
}

// computeTradeSize implements §4.B.2. Returns nil when trade is nil.
func computeTradeSize(cfg config.FeatureConfig, eng *state.Engine, tokenID types.TokenID, trade *types.Trade, nowMS int64) *types.TradeSizeFeatures {
	if trade == nil {
		return nil
	}
	notional := trade.Notional()

	count := eng.TradeCount(tokenID, nowMS)
	stats := eng.RobustStatsFor(tokenID, nowMS)

	if count < cfg.MinWindowSamples {
		return &types.TradeSizeFeatures{
			Notional:              notional,
			RollingMedian:         notional,
			RollingMAD:            0,
			Q95:                   notional,
			Q99:                   notional,
			Q999:                  notional,
			Percentile:            50,
			RobustZ:               0,
			RawSizeTailScore:      rawSizeTailScore(50),
			DollarFloorMultiplier: cfg.DollarFloorMultiplier(notional),
			SizeTailScore:         rawSizeTailScore(50) * cfg.DollarFloorMultiplier(notional),
			IsLargeTrade:          false,
			IsTailTrade:           false,
			IsExtremeTrade:        false,
			DegradedSampleCount:   count,
		}
	}

	percentile := eng.TradeSizePercentileRank(tokenID, notional)
	robustZ := stats.RobustZ(notional)
	raw := rawSizeTailScore(percentile)
	floorMult := cfg.DollarFloorMultiplier(notional)

	return &types.TradeSizeFeatures{
		Notional:              notional,
		RollingMedian:         stats.Median,
		RollingMAD:            stats.MAD,
		Q95:                   eng.TradeSizeQuantile(tokenID, 95),
		Q99:                   eng.TradeSizeQuantile(tokenID, 99),
		Q999:                  eng.TradeSizeQuantile(tokenID, 99.9),
		Percentile:            percentile,
		RobustZ:               robustZ,
		RawSizeTailScore:      raw,
		DollarFloorMultiplier: floorMult,
		SizeTailScore:         raw * floorMult,
		IsLargeTrade:          robustZ > 3 || percentile > 99,
		IsTailTrade:           percentile > 95,
		IsExtremeTrade:        percentile > 99.9,
		DegradedSampleCount:   0,
	}
}
