package research

import (
	"sort"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

const baselineWinRate = 0.5

// ComputeCorrelationSummary implements the "Correlation summary"
// clause of §4.D, including the chronological 60/20/20 split.
func ComputeCorrelationSummary(events []types.ContrarianEvent, mode types.ContrarianMode) types.CorrelationSummary {
	sorted := sortedByTimestamp(events)

	predictor, outcome := predictorOutcome(sorted, mode)
	r, p, ciLo, ciHi := pointBiserial(predictor, outcome)

	wins := 0
	predictorTrue := 0
	for i := range predictor {
		if predictor[i] {
			predictorTrue++
			if outcome[i] {
				wins++
			}
		}
	}
	signalWinRate := 0.0
	if predictorTrue > 0 {
		signalWinRate = float64(wins) / float64(predictorTrue)
	}
	lift := 0.0
	if baselineWinRate > 0 {
		lift = (signalWinRate - baselineWinRate) / baselineWinRate
	}

	scores := make([]float64, len(sorted))
	for i, e := range sorted {
		scores[i] = contrarianScore(e)
	}
	auc := computeAUC(scores, outcome)

	summary := types.CorrelationSummary{
		N:               len(sorted),
		PointBiserialR:  r,
		PValue:          p,
		CILower:         ciLo,
		CIUpper:         ciHi,
		SignalWinRate:   signalWinRate,
		BaselineWinRate: baselineWinRate,
		Lift:            lift,
		AUC:             auc,
		PnL:             ComputePnL(sorted),
	}

	train, validate, test := chronologicalSplit(sorted)
	summary.Train = splitMetrics(train, mode)
	summary.Validate = splitMetrics(validate, mode)
	summary.Test = splitMetrics(test, mode)

	return summary
}

func predictorOutcome(events []types.ContrarianEvent, mode types.ContrarianMode) (predictor, outcome []bool) {
	predictor = make([]bool, len(events))
	outcome = make([]bool, len(events))
	for i, e := range events {
		predictor[i] = e.IsContrarianByMode(mode)
		outcome[i] = e.OutcomeWon
	}
	return predictor, outcome
}

func sortedByTimestamp(events []types.ContrarianEvent) []types.ContrarianEvent {
	sorted := make([]types.ContrarianEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TradeTimestampMS < sorted[j].TradeTimestampMS })
	return sorted
}

// chronologicalSplit implements the 60/20/20 chronological train/
// validate/test split.
func chronologicalSplit(sorted []types.ContrarianEvent) (train, validate, test []types.ContrarianEvent) {
	n := len(sorted)
	trainEnd := int(float64(n) * 0.6)
	validateEnd := int(float64(n) * 0.8)
	return sorted[:trainEnd], sorted[trainEnd:validateEnd], sorted[validateEnd:]
}

func splitMetrics(events []types.ContrarianEvent, mode types.ContrarianMode) *types.SplitMetrics {
	predictor, outcome := predictorOutcome(events, mode)
	r, _, _, _ := pointBiserial(predictor, outcome)
	scores := make([]float64, len(events))
	for i, e := range events {
		scores[i] = contrarianScore(e)
	}
	return &types.SplitMetrics{N: len(events), R: r, AUC: computeAUC(scores, outcome)}
}

// applyFilters implements the AnalysisConfig narrowing clause of
// §4.D ("Filters").
func applyFilters(events []types.ContrarianEvent, cfg config.ResearchConfig, ac types.AnalysisConfig) []types.ContrarianEvent {
	_ = cfg // reserved for future cfg-driven defaults; filters currently come entirely from ac
	out := make([]types.ContrarianEvent, 0, len(events))
	for _, e := range events {
		if ac.MinSizeUSD > 0 && e.TradeNotional < ac.MinSizeUSD {
			continue
		}
		if ac.RequireAsymmetricBook && !e.IsAsymmetricBook {
			continue
		}
		if ac.RequireNewWallet && !e.IsNewWallet {
			continue
		}
		if e.WalletAgeDays > ac.MaxWalletAgeDays {
			continue
		}
		if e.SpreadBps > ac.MaxSpreadBps {
			continue
		}
		if len(ac.Categories) > 0 && !containsString(ac.Categories, e.Category) {
			continue
		}
		if e.TradePrice < ac.MinPrice || e.TradePrice > ac.MaxPrice {
			continue
		}
		if e.MinutesBeforeClose < ac.MinTTCMinutes || e.MinutesBeforeClose > ac.MaxTTCMinutes {
			continue
		}
		if ac.OutcomeFilter != "" && ac.OutcomeFilter != "all" && string(e.TradedOutcome) != ac.OutcomeFilter {
			continue
		}
		if e.SizeZScore < ac.MinZScore || e.SizeZScore > ac.MaxZScore {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
