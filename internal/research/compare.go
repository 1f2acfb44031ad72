package research

import (
	"github.com/sawpanic/marketintel/internal/types"
)

// ModeComparison is one contrarian mode's correlation summary plus its
// FDR-adjusted significance against the other three modes evaluated
// in the same call (the "Compare" operation of §4.D / §6's
// `/api/analysis/compare` route).
type ModeComparison struct {
	Mode                       types.ContrarianMode
	Summary                    types.CorrelationSummary
	AdjustedPValue             float64
	IsStatisticallySignificant bool
}

// allContrarianModes is the fixed four-mode comparison set; order is
// stable so FDR adjustment and output order match.
var allContrarianModes = []types.ContrarianMode{
	types.ModePriceOnly, types.ModeVsTrend, types.ModeVsOFI, types.ModeVsBoth,
}

// CompareModes implements the "Compare" clause of §4.D: compute the
// correlation summary for each of the four contrarian modes over the
// same filtered event pool, then apply one Benjamini-Hochberg pass
// across the four p-values (testable property #7's single-pass rule
// applies here too: adjustment happens after all four summaries are
// computed, never interleaved).
func (e *Engine) CompareModes(ac types.AnalysisConfig, fdrAlpha float64) []ModeComparison {
	if fdrAlpha <= 0 {
		fdrAlpha = e.cfg.DefaultFDRAlpha
	}
	filtered := applyFilters(e.events(), e.cfg, ac)

	summaries := make([]types.CorrelationSummary, len(allContrarianModes))
	rawPValues := make([]float64, len(allContrarianModes))
	for i, mode := range allContrarianModes {
		summaries[i] = ComputeCorrelationSummary(filtered, mode)
		rawPValues[i] = summaries[i].PValue
	}

	adjusted, significant := BenjaminiHochberg(rawPValues, fdrAlpha)

	out := make([]ModeComparison, len(allContrarianModes))
	for i, mode := range allContrarianModes {
		out[i] = ModeComparison{
			Mode:                       mode,
			Summary:                    summaries[i],
			AdjustedPValue:             adjusted[i],
			IsStatisticallySignificant: significant[i],
		}
	}
	return out
}
