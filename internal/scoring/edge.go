package scoring

import "github.com/sawpanic/marketintel/internal/types"

// edgeResult bundles the edge score with its diagnostic fields.
type edgeResult struct {
	ImpliedProbability   float64
	EstimatedProbability float64
	Edge                 float64
	AlignedSignals       int
	EdgeConfidence       float64
	Score                float64
}

// computeEdge implements the edge formula of §4.C. currentMid is the
// book's mid price, standing in for impliedProbability.
func computeEdge(fv types.FeatureVector, anomaly float64, execScore float64, currentMid float64) edgeResult {
	signedImbalance := fv.OrderBook.Imbalance
	absImbalance := signedImbalance
	if absImbalance < 0 {
		absImbalance = -absImbalance
	}

	isLargeTrade := fv.TradeSize != nil && fv.TradeSize.IsLargeTrade
	isNewAccount := fv.Wallet != nil && fv.Wallet.IsNewAccount

	adjustment := signedImbalance*min(0.15, 0.1*anomaly) + signedImbalance*absImbalance*0.05
	if isNewAccount && isLargeTrade {
		adjustment *= 1.2
	}

	implied := currentMid
	estimated := clampRange(implied+adjustment, 0.01, 0.99)
	edge := estimated - implied

	alignedSignals := 0
	if isLargeTrade {
		alignedSignals++
	}
	if absImbalance > 0.3 {
		alignedSignals++
	}
	if fv.Burst.BurstDetected {
		alignedSignals++
	}
	if fv.ChangePoint.RegimeShift != types.RegimeNone {
		alignedSignals++
	}
	if isNewAccount {
		alignedSignals++
	}

	edgeConfidence := min(0.9, 0.2+0.14*float64(alignedSignals))

	absEdge := edge
	if absEdge < 0 {
		absEdge = -absEdge
	}
	score := clamp01(absEdge * 5 * edgeConfidence * execScore)

	return edgeResult{
		ImpliedProbability:   implied,
		EstimatedProbability: estimated,
		Edge:                 edge,
		AlignedSignals:       alignedSignals,
		EdgeConfidence:       edgeConfidence,
		Score:                score,
	}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clampRange(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
