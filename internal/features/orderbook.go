package features

import "github.com/sawpanic/marketintel/internal/types"

// computeOrderBook implements §4.B.3. Never nil: a neutral default is
// returned when there is no current book.
func computeOrderBook(metrics *types.BookMetrics) types.OrderBookFeatures {
	if metrics == nil {
		return types.OrderBookFeatures{
			SpreadScore:  1,
			DepthScore:   0,
			IsAsymmetric: false,
			HasBook:      false,
		}
	}

	imbalance := metrics.Imbalance
	absImbalance := imbalance
	if absImbalance < 0 {
		absImbalance = -absImbalance
	}

	bookImbalanceScore := min1(absImbalance / 0.7)
	thinOppositeScore := max0(1 - metrics.ThinSideRatio)
	spreadScore := max0(1 - metrics.SpreadBps/500)
	depthScore := min1(metrics.TotalDepthUSD / 100)
	isAsymmetric := absImbalance > 0.5 && metrics.ThinSideRatio < 0.3

	return types.OrderBookFeatures{
		BookImbalanceScore: bookImbalanceScore,
		ThinOppositeScore:  thinOppositeScore,
		SpreadScore:        spreadScore,
		DepthScore:         depthScore,
		IsAsymmetric:       isAsymmetric,
		HasBook:            true,
		Imbalance:          imbalance,
		ThinSideRatio:      metrics.ThinSideRatio,
	}
}

func min1(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < 0 {
		return 0
	}
	return x
}

func max0(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
