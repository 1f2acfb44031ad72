package features

import (
	"math"

	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

// computeChangePoint implements §4.B.7: picks the metric (trade rate,
// spread, imbalance) with the largest CUSUM focus statistic as the
// "winning" metric, and derives a smooth saturating score from it
// relative to the alarm threshold.
func computeChangePoint(eng *state.Engine, tokenID types.TokenID, threshold float64) types.ChangePointFeatures {
	tradeRate := eng.CUSUMTradeRate(tokenID)
	spread := eng.CUSUMSpread(tokenID)
	imbalance := eng.CUSUMImbalance(tokenID)

	winner := tradeRate
	if spread.FocusStatistic > winner.FocusStatistic {
		winner = spread
	}
	if imbalance.FocusStatistic > winner.FocusStatistic {
		winner = imbalance
	}

	focus := winner.FocusStatistic
	score := 0.0
	if threshold > 0 {
		score = 1 - math.Exp(-focus/threshold)
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	shift := types.RegimeNone
	var ts *int64
	if winner.Alarmed {
		if winner.Increase {
			shift = types.RegimeIncrease
		} else if winner.Decrease {
			shift = types.RegimeDecrease
		}
		ts = winner.ChangePointMS
	}

	return types.ChangePointFeatures{
		FocusStatistic:       focus,
		ChangePointScore:     score,
		RegimeShift:          shift,
		ChangePointTimestamp: ts,
	}
}
