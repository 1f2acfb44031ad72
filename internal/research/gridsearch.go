package research

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// EventSource resolves the full event pool a grid-search configuration
// should be filtered against; injected so the research engine does not
// import the persistence layer directly.
type EventSource func() []types.ContrarianEvent

// gridConfigs enumerates the cartesian product of a GridSearchConfig,
// materializing every configuration into one slice up front.
func gridConfigs(gs types.GridSearchConfig) []types.AnalysisConfig {
	modes := gs.ContrarianModes
	if len(modes) == 0 {
		modes = []types.ContrarianMode{types.ModeVsOFI}
	}
	sizes := gs.MinSizeUSDs
	if len(sizes) == 0 {
		sizes = []float64{0}
	}
	windows := gs.WindowMinutes
	if len(windows) == 0 {
		windows = []int{30}
	}
	prices := gs.PriceRanges
	if len(prices) == 0 {
		prices = [][2]float64{{0, 1}}
	}
	ttcs := gs.TTCRanges
	if len(ttcs) == 0 {
		ttcs = [][2]float64{{0, 1e9}}
	}
	outcomes := gs.OutcomeFilters
	if len(outcomes) == 0 {
		outcomes = []string{"all"}
	}

	var out []types.AnalysisConfig
	for _, mode := range modes {
		for _, size := range sizes {
			for _, window := range windows {
				for _, price := range prices {
					for _, ttc := range ttcs {
						for _, outcome := range outcomes {
							ac := types.DefaultAnalysisConfig()
							ac.ContrarianMode = mode
							ac.MinSizeUSD = size
							ac.WindowMinutes = window
							ac.MinPrice = price[0]
							ac.MaxPrice = price[1]
							ac.MinTTCMinutes = ttc[0]
							ac.MaxTTCMinutes = ttc[1]
							ac.OutcomeFilter = outcome
							out = append(out, ac)
						}
					}
				}
			}
		}
	}
	return out
}

// configHash is a deterministic digest used as the warehouse
// primary-key component and result identifier.
func configHash(ac types.AnalysisConfig) string {
	data, _ := json.Marshal(ac)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// binomialPValue is a two-sided normal-approximation test of the
// observed win rate against the 0.5 baseline, with continuity
// correction. Used as the grid search's raw per-config significance
// figure prior to FDR correction.
func binomialPValue(wins, n int) float64 {
	if n == 0 {
		return 1
	}
	p0 := 0.5
	mean := float64(n) * p0
	sd := math.Sqrt(float64(n) * p0 * (1 - p0))
	if sd == 0 {
		return 1
	}
	diff := math.Abs(float64(wins)-mean) - 0.5
	if diff < 0 {
		diff = 0
	}
	z := diff / sd
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	return 2 * (1 - norm.CDF(z))
}

// BenjaminiHochberg adjusts raw p-values for false-discovery rate at
// alpha, returning adjusted p-values in the SAME order as the input
// (testable property #7: sorted adjusted values are non-decreasing;
// a single p-value passes through unchanged).
func BenjaminiHochberg(pValues []float64, alpha float64) (adjusted []float64, significant []bool) {
	n := len(pValues)
	adjusted = make([]float64, n)
	significant = make([]bool, n)
	if n == 0 {
		return adjusted, significant
	}
	if n == 1 {
		adjusted[0] = pValues[0]
		significant[0] = pValues[0] <= alpha
		return adjusted, significant
	}

	type indexed struct {
		p   float64
		idx int
	}
	sorted := make([]indexed, n)
	for i, p := range pValues {
		sorted[i] = indexed{p, i}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].p < sorted[j].p })

	rawAdjusted := make([]float64, n)
	for rank := n; rank >= 1; rank-- {
		i := rank - 1
		bh := sorted[i].p * float64(n) / float64(rank)
		if rank == n {
			rawAdjusted[i] = math.Min(bh, 1)
		} else {
			rawAdjusted[i] = math.Min(rawAdjusted[i+1], math.Min(bh, 1))
		}
	}

	for i, s := range sorted {
		adjusted[s.idx] = rawAdjusted[i]
		significant[s.idx] = rawAdjusted[i] <= alpha
	}
	return adjusted, significant
}

// sharpeRatio annualizes the per-trade return series' Sharpe ratio by
// sqrt(252), the trading-days-per-year convention.
func sharpeRatio(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(n)
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(n - 1)
	sd := math.Sqrt(variance)
	if sd == 0 {
		return 0
	}
	return (mean / sd) * math.Sqrt(252)
}

// weeklyInformationRatio buckets events by ISO week and computes the
// mean/stddev of each week's average edge (estimated - implied proxy:
// here, (outcome - 0.5) since grid-search events only carry
// win/loss), annualized by sqrt(52).
func weeklyInformationRatio(events []types.ContrarianEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	weekly := make(map[int64][]float64)
	for _, e := range events {
		t := time.UnixMilli(e.TradeTimestampMS).UTC()
		y, w := t.ISOWeek()
		key := int64(y)*100 + int64(w)
		edge := -0.5
		if e.OutcomeWon {
			edge = 0.5
		}
		weekly[key] = append(weekly[key], edge)
	}
	var weeklyMeans []float64
	for _, vals := range weekly {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		weeklyMeans = append(weeklyMeans, sum/float64(len(vals)))
	}
	if len(weeklyMeans) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range weeklyMeans {
		mean += v
	}
	mean /= float64(len(weeklyMeans))
	variance := 0.0
	for _, v := range weeklyMeans {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(weeklyMeans) - 1)
	sd := math.Sqrt(variance)
	if sd == 0 {
		return 0
	}
	return (mean / sd) * math.Sqrt(52)
}

// GridConfigCount returns the cartesian-product size of gs without
// evaluating any configuration; used by the optimize POST route to
// echo the total combination count in its 202 response.
func GridConfigCount(gs types.GridSearchConfig) int {
	return len(gridConfigs(gs))
}

// ParetoFrontier recomputes rankings and Pareto-optimality for an
// already-evaluated result set against objectives, returning only the
// Pareto-optimal points. Lets the `/pareto` route re-derive a frontier
// for an objective subset that may differ from the one the original
// grid search ranked against, without re-running the search.
func ParetoFrontier(results []types.OptimizationResult, objectives []string) []types.OptimizationResult {
	cp := make([]types.OptimizationResult, len(results))
	copy(cp, results)
	rankResults(cp, objectives)
	markParetoFrontier(cp, objectives)
	out := make([]types.OptimizationResult, 0, len(cp))
	for _, r := range cp {
		if r.IsParetoOptimal {
			out = append(out, r)
		}
	}
	return out
}

// RunGridSearch implements the "Grid search" clause of §4.D.
func RunGridSearch(source EventSource, gs types.GridSearchConfig, cfg config.ResearchConfig) []types.OptimizationResult {
	configs := gridConfigs(gs)
	fdrAlpha := gs.FDRAlpha
	if fdrAlpha <= 0 {
		fdrAlpha = cfg.DefaultFDRAlpha
	}
	minSample := gs.MinSampleSize
	if minSample <= 0 {
		minSample = 1
	}

	allEvents := source()

	type evaluated struct {
		ac      types.AnalysisConfig
		events  []types.ContrarianEvent
		metrics types.OptimizationMetrics
	}
	var results []evaluated
	var rawPValues []float64

	for _, ac := range configs {
		filtered := applyFilters(allEvents, cfg, ac)
		if len(filtered) < minSample {
			continue
		}
		pnl := ComputePnL(filtered)
		wins := int(pnl.WinRate * float64(pnl.N))
		p := binomialPValue(wins, pnl.N)

		returns := make([]float64, len(filtered))
		for i, e := range filtered {
			returns[i] = e.TradeNotional * (1 - e.TradePrice)
			if !e.OutcomeWon {
				returns[i] = -e.TradeNotional * e.TradePrice
			}
		}

		metrics := types.OptimizationMetrics{
			N:                pnl.N,
			WinRate:          pnl.WinRate,
			PnL:              pnl.PnL,
			ROI:              pnl.ROI,
			ProfitFactor:     pnl.ProfitFactor,
			EdgePoints:       pnl.EdgePoints,
			SharpeRatio:      sharpeRatio(returns),
			KellyFraction:    pnl.KellyFraction,
			InformationRatio: weeklyInformationRatio(filtered),
			PValue:           p,
			AvgPrice:         pnl.AvgPrice,
			BreakEvenRate:    pnl.BreakEvenRate,
		}

		results = append(results, evaluated{ac: ac, events: filtered, metrics: metrics})
		rawPValues = append(rawPValues, p)
	}

	adjusted, significant := BenjaminiHochberg(rawPValues, fdrAlpha)

	out := make([]types.OptimizationResult, len(results))
	for i, r := range results {
		r.metrics.AdjustedPValue = adjusted[i]
		out[i] = types.OptimizationResult{
			ConfigID:                   configHash(r.ac),
			Config:                     r.ac,
			Metrics:                    r.metrics,
			IsStatisticallySignificant: significant[i],
		}
	}

	objectives := gs.Objectives
	if len(objectives) == 0 {
		objectives = []string{"roi", "sharpe_ratio", "profit_factor"}
	}
	rankResults(out, objectives)
	markParetoFrontier(out, objectives)

	return out
}

func objectiveValue(m types.OptimizationMetrics, objective string) float64 {
	switch objective {
	case "roi":
		return m.ROI
	case "sharpe_ratio":
		return m.SharpeRatio
	case "profit_factor":
		return m.ProfitFactor
	case "win_rate":
		return m.WinRate
	case "edge_points":
		return m.EdgePoints
	case "information_ratio":
		return m.InformationRatio
	default:
		return 0
	}
}

func rankResults(results []types.OptimizationResult, objectives []string) {
	for _, obj := range objectives {
		idx := make([]int, len(results))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(i, j int) bool {
			return objectiveValue(results[idx[i]].Metrics, obj) > objectiveValue(results[idx[j]].Metrics, obj)
		})
		for rank, i := range idx {
			if results[i].RankByObjective == nil {
				results[i].RankByObjective = make(map[string]int)
			}
			results[i].RankByObjective[obj] = rank + 1
		}
	}
}

// markParetoFrontier implements the Pareto-dominance clause: a point
// is dominated iff some other point is >= in every objective and > in
// at least one (testable property #10).
func markParetoFrontier(results []types.OptimizationResult, objectives []string) {
	for i := range results {
		dominated := false
		for j := range results {
			if i == j {
				continue
			}
			if dominates(results[j].Metrics, results[i].Metrics, objectives) {
				dominated = true
				break
			}
		}
		results[i].IsParetoOptimal = !dominated
	}
}

func dominates(a, b types.OptimizationMetrics, objectives []string) bool {
	strictlyBetter := false
	for _, obj := range objectives {
		av, bv := objectiveValue(a, obj), objectiveValue(b, obj)
		if av < bv {
			return false
		}
		if av > bv {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}
