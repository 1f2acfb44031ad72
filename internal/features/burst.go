package features

import (
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

// computeBurst implements §4.B.6.
func computeBurst(eng *state.Engine, tokenID types.TokenID, nowMS int64) types.BurstFeatures {
	oneMin, fiveMin := eng.TradeCounts(tokenID, nowMS)
	intensity := eng.HawkesIntensity(tokenID, nowMS)
	ratio := eng.HawkesIntensityRatio(tokenID, nowMS)

	burstScore := (ratio - 1) / 4
	if burstScore < 0 {
		burstScore = 0
	}
	if burstScore > 1 {
		burstScore = 1
	}

	return types.BurstFeatures{
		TradeCount1m:    oneMin,
		TradeCount5m:    fiveMin,
		HawkesIntensity: intensity,
		IntensityRatio:  ratio,
		BurstScore:      burstScore,
		BurstDetected:   eng.IsBurst(tokenID, nowMS),
	}
}
