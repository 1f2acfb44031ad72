package scoring

import (
	"sort"

	"github.com/sawpanic/marketintel/internal/types"
)

// triggeringTradeMinNotionalUSD is the fixed $5,000 floor from §4.C.
const triggeringTradeMinNotionalUSD = 5000

// highestTradeDisplayFloorUSD bounds which trades are worth surfacing
// as "highest trade in the last hour" even when nothing triggered.
const highestTradeDisplayFloorUSD = 1000

// WalletAgeLookup resolves a taker address to its wallet age in days;
// ok is false when no enrichment is available.
type WalletAgeLookup func(address string) (ageDays float64, ok bool)

// computeTriggeringTrades implements the "Triggering trades" clause of
// §4.C: trades at or above both the fixed $5,000 floor and the
// window's own q95, sorted by notional descending, top 3, enriched
// with wallet age. highestTrade1h is the single largest trade above a
// lower display floor, independent of the triggering criteria.
func computeTriggeringTrades(trades []types.Trade, q95 float64, lookupAge WalletAgeLookup) ([]types.TriggeringTrade, *types.TriggeringTrade) {
	enrich := func(t types.Trade) types.TriggeringTrade {
		age := -1.0
		if lookupAge != nil {
			if a, ok := lookupAge(t.TakerAddress); ok {
				age = a
			}
		}
		return types.TriggeringTrade{Trade: t, Notional: t.Notional(), WalletAgeDays: age}
	}

	candidates := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		n := t.Notional()
		if n >= triggeringTradeMinNotionalUSD && n >= q95 {
			candidates = append(candidates, t)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Notional() > candidates[j].Notional()
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	triggering := make([]types.TriggeringTrade, len(candidates))
	for i, t := range candidates {
		triggering[i] = enrich(t)
	}

	var highest *types.TriggeringTrade
	var highestNotional float64
	for _, t := range trades {
		n := t.Notional()
		if n >= highestTradeDisplayFloorUSD && n > highestNotional {
			enriched := enrich(t)
			highest = &enriched
			highestNotional = n
		}
	}

	return triggering, highest
}
