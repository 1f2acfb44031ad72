package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// TestDominates_ParetoFrontier is testable property #10: a point is
// dominated iff another point is >= on every objective and > on at
// least one.
func TestDominates_ParetoFrontier(t *testing.T) {
	objectives := []string{"roi", "sharpe_ratio"}

	better := types.OptimizationMetrics{ROI: 0.2, SharpeRatio: 1.5}
	worse := types.OptimizationMetrics{ROI: 0.1, SharpeRatio: 1.0}
	assert.True(t, dominates(better, worse, objectives))
	assert.False(t, dominates(worse, better, objectives))

	equal := types.OptimizationMetrics{ROI: 0.2, SharpeRatio: 1.5}
	assert.False(t, dominates(equal, better, objectives))

	tradeoffA := types.OptimizationMetrics{ROI: 0.3, SharpeRatio: 0.5}
	tradeoffB := types.OptimizationMetrics{ROI: 0.1, SharpeRatio: 2.0}
	assert.False(t, dominates(tradeoffA, tradeoffB, objectives))
	assert.False(t, dominates(tradeoffB, tradeoffA, objectives))
}

func TestMarkParetoFrontier_NonDominatedSurvive(t *testing.T) {
	objectives := []string{"roi", "sharpe_ratio"}
	results := []types.OptimizationResult{
		{Metrics: types.OptimizationMetrics{ROI: 0.3, SharpeRatio: 0.5}}, // on frontier
		{Metrics: types.OptimizationMetrics{ROI: 0.1, SharpeRatio: 2.0}}, // on frontier
		{Metrics: types.OptimizationMetrics{ROI: 0.05, SharpeRatio: 0.1}}, // dominated by both
	}
	markParetoFrontier(results, objectives)

	assert.True(t, results[0].IsParetoOptimal)
	assert.True(t, results[1].IsParetoOptimal)
	assert.False(t, results[2].IsParetoOptimal)
}

func TestBinomialPValue_SymmetricAroundHalf(t *testing.T) {
	p1 := binomialPValue(60, 100)
	p2 := binomialPValue(40, 100)
	assert.InDelta(t, p1, p2, 1e-9)
	assert.Greater(t, binomialPValue(50, 100), binomialPValue(90, 100))
}

func TestRunGridSearch_RespectsMinSampleSize(t *testing.T) {
	source := func() []types.ContrarianEvent {
		return []types.ContrarianEvent{
			eventAtPrice(0.4, 100, true),
		}
	}
	gs := types.GridSearchConfig{
		ContrarianModes: []types.ContrarianMode{types.ModeVsOFI},
		MinSampleSize:   5,
	}
	results := RunGridSearch(source, gs, config.DefaultResearchConfig())
	assert.Empty(t, results)
}
