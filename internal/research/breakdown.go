package research

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// FactorLiquidity, FactorTimeToClose, FactorCategory, and
// FactorNewWallet are the four breakdown factors of §4.D.
const (
	FactorLiquidity   = "liquidity"
	FactorTimeToClose = "time_to_close"
	FactorCategory    = "category"
	FactorNewWallet   = "new_wallet"
)

// bootstrapIterations and bootstrapSeed keep the CI deterministic
// across runs; this is a reporting aid, not a security-sensitive use
// of randomness.
const bootstrapIterations = 1000
const bootstrapSeed = 20240101

// ComputeBreakdown implements the "Breakdown" clause of §4.D.
func ComputeBreakdown(events []types.ContrarianEvent, factor string, cfg config.ResearchConfig) []types.BreakdownGroup {
	groups := groupByFactor(events, factor)

	var out []types.BreakdownGroup
	for name, groupEvents := range groups {
		if len(groupEvents) < cfg.MinBreakdownGroupEvents {
			continue
		}
		wins := 0
		for _, e := range groupEvents {
			if e.OutcomeWon {
				wins++
			}
		}
		winRate := float64(wins) / float64(len(groupEvents))
		lift := (winRate - baselineWinRate) / baselineWinRate
		lo, hi := bootstrapWinRateCI(groupEvents)

		out = append(out, types.BreakdownGroup{
			Factor:  factor,
			Group:   name,
			N:       len(groupEvents),
			WinRate: winRate,
			Lift:    lift,
			CILower: lo,
			CIUpper: hi,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Lift > out[j].Lift })
	return out
}

func groupByFactor(events []types.ContrarianEvent, factor string) map[string][]types.ContrarianEvent {
	groups := make(map[string][]types.ContrarianEvent)
	for _, e := range events {
		key := groupKey(e, factor)
		groups[key] = append(groups[key], e)
	}
	return groups
}

func groupKey(e types.ContrarianEvent, factor string) string {
	switch factor {
	case FactorLiquidity:
		return liquidityDecileLabel(e.SpreadBps)
	case FactorTimeToClose:
		return ttcBucketLabel(e.MinutesBeforeClose)
	case FactorCategory:
		if e.Category == "" {
			return "unknown"
		}
		return e.Category
	case FactorNewWallet:
		if e.IsNewWallet {
			return "new"
		}
		return "established"
	default:
		return "unknown"
	}
}

// liquidityDecileLabel buckets spread bps into fixed 50bps-wide bands
// standing in for deciles over the observed distribution — a stable,
// config-free grouping rather than a per-call recomputed decile
// cutpoint.
func liquidityDecileLabel(spreadBps float64) string {
	band := int(spreadBps / 50)
	lo := band * 50
	hi := lo + 50
	return fmt.Sprintf("%d-%dbps", lo, hi)
}

func ttcBucketLabel(minutesBeforeClose float64) string {
	switch {
	case minutesBeforeClose < 15:
		return "0-15min"
	case minutesBeforeClose < 30:
		return "15-30min"
	case minutesBeforeClose < 60:
		return "30-60min"
	default:
		return "60+min"
	}
}

// bootstrapWinRateCI resamples the group's win/loss outcomes with
// replacement to build a 95% percentile CI on the win rate.
func bootstrapWinRateCI(events []types.ContrarianEvent) (lo, hi float64) {
	n := len(events)
	if n == 0 {
		return 0, 0
	}
	outcomes := make([]bool, n)
	for i, e := range events {
		outcomes[i] = e.OutcomeWon
	}

	r := rand.New(rand.NewSource(bootstrapSeed))
	samples := make([]float64, bootstrapIterations)
	for i := 0; i < bootstrapIterations; i++ {
		wins := 0
		for j := 0; j < n; j++ {
			if outcomes[r.Intn(n)] {
				wins++
			}
		}
		samples[i] = float64(wins) / float64(n)
	}
	sort.Float64s(samples)
	loIdx := int(0.025 * float64(bootstrapIterations))
	hiIdx := int(0.975 * float64(bootstrapIterations))
	if hiIdx >= bootstrapIterations {
		hiIdx = bootstrapIterations - 1
	}
	return samples[loIdx], samples[hiIdx]
}
