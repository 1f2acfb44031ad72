// Package research implements the research & optimization engine
// (spec.md §4.D): event enrichment, correlation/AUC summaries, rolling
// correlation, factor breakdowns, a logistic regression model report,
// grid search with FDR correction and Pareto-frontier extraction, and
// single-parameter sensitivity analysis.
package research

import (
	"math"

	"github.com/sawpanic/marketintel/internal/types"
)

// ComputePnL implements the P&L metrics clause of §4.D. Per-event win
// payoff is notional*(1-price); loss is -notional*price.
func ComputePnL(events []types.ContrarianEvent) types.PnLMetrics {
	var totalWin, totalLoss, totalNotional, priceSum float64
	wins := 0

	for _, e := range events {
		priceSum += e.TradePrice
		payoff := e.TradeNotional * (1 - e.TradePrice)
		loss := -e.TradeNotional * e.TradePrice
		totalNotional += e.TradeNotional
		if e.OutcomeWon {
			totalWin += payoff
			wins++
		} else {
			totalLoss += loss
		}
	}

	n := len(events)
	metrics := types.PnLMetrics{N: n}
	if n == 0 {
		metrics.Warnings = append(metrics.Warnings, "no resolved events")
		return metrics
	}

	metrics.WinRate = float64(wins) / float64(n)
	metrics.TotalWinPnL = totalWin
	metrics.TotalLossPnL = totalLoss
	metrics.PnL = totalWin + totalLoss
	if totalNotional > 0 {
		metrics.ROI = metrics.PnL / totalNotional
	}
	if totalLoss != 0 {
		metrics.ProfitFactor = totalWin / math.Abs(totalLoss)
	}
	avgPrice := priceSum / float64(n)
	metrics.AvgPrice = avgPrice
	metrics.BreakEvenRate = avgPrice
	metrics.EdgePoints = (metrics.WinRate - metrics.BreakEvenRate) * 100

	metrics.KellyFraction = kellyFraction(metrics.WinRate, avgPrice)
	metrics.HalfKelly = 0.5 * metrics.KellyFraction

	metrics.IsProfitable = metrics.PnL >= 0

	if n < 30 {
		metrics.Warnings = append(metrics.Warnings, "small sample size")
	}
	if metrics.WinRate < metrics.BreakEvenRate {
		metrics.Warnings = append(metrics.Warnings, "win rate is below break-even")
	}

	return metrics
}

// kellyFraction implements Kelly = max(0, (p*b - q)/b) with b =
// (1-price)/price, q = 1-p. A price of exactly 0 or 1 returns 0 (no
// well-defined edge to size against).
func kellyFraction(winRate, avgPrice float64) float64 {
	if avgPrice <= 0 || avgPrice >= 1 {
		return 0
	}
	b := (1 - avgPrice) / avgPrice
	q := 1 - winRate
	if b == 0 {
		return 0
	}
	k := (winRate*b - q) / b
	if k < 0 {
		return 0
	}
	return k
}
