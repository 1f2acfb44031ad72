package features

import "github.com/sawpanic/marketintel/internal/types"

const (
	walletNewScoreFullAgeDays  = 7.0
	walletNewScoreZeroAgeDays  = 180.0
	walletLowActivityTxCount   = 50
	walletNewAccountAgeDays    = 7.0
)

// activityScore implements the transaction-count risk bucketing from
// §4.B.4. Despite the name, a higher score means a thinner track
// record (more risk), matching walletNewScore's polarity.
func activityScore(txCount int64, known bool) float64 {
	if !known {
		return 0.9
	}
	switch {
	case txCount < 10:
		return 0.9
	case txCount < 50:
		return 0.6
	case txCount < 100:
		return 0.3
	default:
		return 0.1
	}
}

// walletNewScore is 1.0 below 7 days old, decaying linearly to 0 by
// ~180 days; monotone non-increasing in age.
func walletNewScore(ageDays float64) float64 {
	if ageDays < 0 {
		return 1.0 // unknown age treated as conservative/new
	}
	if ageDays <= walletNewScoreFullAgeDays {
		return 1.0
	}
	if ageDays >= walletNewScoreZeroAgeDays {
		return 0.0
	}
	span := walletNewScoreZeroAgeDays - walletNewScoreFullAgeDays
	return 1.0 - (ageDays-walletNewScoreFullAgeDays)/span
}

// walletRiskWeights combine the activity and newness subscores, plus
// an "unknown data" penalty subscore, into one figure. Documented
// weighting (see DESIGN.md): activity and newness carry most of the
// signal; unknown-data penalty is a smaller conservative nudge.
const (
	walletRiskWeightActivity = 0.45
	walletRiskWeightNew      = 0.45
	walletRiskWeightUnknown  = 0.10
)

// computeWallet implements §4.B.4. Returns nil when no wallet
// enrichment is present for this trade's taker.
func computeWallet(w *types.WalletEnrichment, nowMS int64) *types.WalletFeatures {
	if w == nil {
		return nil
	}

	ageDays := w.AgeDays(nowMS)
	known := w.FirstSeenTimestamp != nil
	txKnown := w.TransactionCount > 0 || known

	act := activityScore(w.TransactionCount, txKnown)
	newScore := walletNewScore(ageDays)

	unknownPenalty := 0.0
	if !known {
		unknownPenalty = 1.0
	}

	risk := walletRiskWeightActivity*act + walletRiskWeightNew*newScore + walletRiskWeightUnknown*unknownPenalty

	return &types.WalletFeatures{
		AgeDays:         ageDays,
		ActivityScore:   act,
		WalletNewScore:  newScore,
		WalletRiskScore: risk,
		IsNewAccount:    known && ageDays < walletNewAccountAgeDays,
		IsLowActivity:   !txKnown || w.TransactionCount < walletLowActivityTxCount,
		TxCountKnown:    txKnown,
	}
}
