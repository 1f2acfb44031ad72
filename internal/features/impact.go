package features

import (
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

const (
	impactDrift30sMS = 30_000
	impactDrift60sMS = 60_000
	impactMaxDrift   = 0.05 // price units; beyond this impactScore saturates at 1
)

// computeImpact implements §4.B.5: a proxy for post-trade mid drift,
// signed so positive means the subsequent price move confirmed the
// trade's direction. Returns nil when neither the +30s nor +60s
// sample has arrived yet (insufficient history).
func computeImpact(eng *state.Engine, tokenID types.TokenID, trade *types.Trade) *types.ImpactFeatures {
	if trade == nil {
		return nil
	}

	sign := 1.0
	if trade.Side == types.Sell {
		sign = -1.0
	}

	p30, ok30 := eng.PriceAt(tokenID, trade.TimestampMS+impactDrift30sMS)
	p60, ok60 := eng.PriceAt(tokenID, trade.TimestampMS+impactDrift60sMS)
	if !ok30 && !ok60 {
		return nil
	}

	drift30 := 0.0
	if ok30 {
		drift30 = sign * (p30 - trade.Price)
	}
	drift60 := 0.0
	if ok60 {
		drift60 = sign * (p60 - trade.Price)
	}

	best := drift60
	if !ok60 {
		best = drift30
	}
	score := best / impactMaxDrift
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return &types.ImpactFeatures{
		Drift30s:    drift30,
		Drift60s:    drift60,
		ImpactScore: score,
	}
}
