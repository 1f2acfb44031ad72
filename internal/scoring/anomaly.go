// Package scoring implements the scoring engine (spec.md §4.C):
// anomaly/triple-signal/execution/edge/composite scores derived from
// a FeatureVector.
package scoring

import "github.com/sawpanic/marketintel/internal/types"

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// computeAnomaly implements the anomaly formula of §4.C.
func computeAnomaly(fv types.FeatureVector) float64 {
	sizeTail := 0.0
	if fv.TradeSize != nil {
		sizeTail = fv.TradeSize.SizeTailScore
	}
	walletNew := 0.0
	if fv.Wallet != nil {
		walletNew = fv.Wallet.WalletNewScore
	}
	impact := 0.0
	if fv.Impact != nil {
		impact = fv.Impact.ImpactScore
	}

	core := 0.35*sizeTail +
		0.30*(0.6*fv.OrderBook.BookImbalanceScore+0.4*fv.OrderBook.ThinOppositeScore) +
		0.20*walletNew +
		0.15*impact

	context := fv.ChangePoint.ChangePointScore
	if fv.Burst.BurstScore > context {
		context = fv.Burst.BurstScore
	}

	return clamp01(fv.TimeToClose.RampMultiplier * (0.7*core + 0.3*context))
}
