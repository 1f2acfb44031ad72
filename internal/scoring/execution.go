package scoring

import (
	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// executionResult bundles the execution score with its three
// diagnostic emissions from §4.C.
type executionResult struct {
	Score               float64
	SlippageEstimateBps float64
	FillProbability     float64
	DepthAtLimit        float64
}

// computeExecution implements the execution formula of §4.C. depthUSD
// and spreadBps are the raw book figures (not the normalized
// OrderBookFeatures scores) so slippage/fill/depth can be expressed in
// their natural units.
func computeExecution(cfg config.ScoringConfig, fv types.FeatureVector, book *types.BookMetrics, targetSizeUSD float64) executionResult {
	depthScore := fv.OrderBook.DepthScore
	absImbalance := fv.OrderBook.Imbalance
	if absImbalance < 0 {
		absImbalance = -absImbalance
	}

	var spreadBps, depthUSD float64
	if book != nil {
		spreadBps = book.SpreadBps
		depthUSD = book.TotalDepthUSD
	}

	spreadRange := cfg.SpreadMaxAcceptableBps - cfg.SpreadMinAcceptableBps
	spreadPenalty := 0.0
	if spreadRange > 0 {
		spreadPenalty = (spreadBps - cfg.SpreadMinAcceptableBps) / spreadRange
	}
	spreadPenalty = clamp01(spreadPenalty)

	volPenalty := clamp01(0.6*clamp01(spreadBps/500) + 0.4*absImbalance)

	rampMultiplier := fv.TimeToClose.RampMultiplier
	timeScore := 1.0
	if rampMultiplier > 0 {
		timeScore = 1.0 / rampMultiplier
	}
	timeScore = clamp01(timeScore)

	score := clamp01(0.40*depthScore + 0.25*(1-spreadPenalty) + 0.25*(1-volPenalty) + 0.10*timeScore)

	// Proxy diagnostics: slippage widens with spread and with the
	// target size's share of available depth; fill probability and
	// depth-at-limit mirror how much of the target size the book can
	// absorb near the touch.
	depthUSDForRatio := depthUSD
	if depthUSDForRatio <= 0 {
		depthUSDForRatio = 1
	}
	sizeRatio := targetSizeUSD / depthUSDForRatio
	slippageEstimateBps := spreadBps/2 + 100*clamp01(sizeRatio)
	fillProbability := clamp01(1 - 0.5*clamp01(sizeRatio))
	depthAtLimit := depthUSD

	return executionResult{
		Score:               score,
		SlippageEstimateBps: slippageEstimateBps,
		FillProbability:     fillProbability,
		DepthAtLimit:        depthAtLimit,
	}
}
