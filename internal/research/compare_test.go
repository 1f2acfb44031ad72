package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

func compareTestEvents() []types.ContrarianEvent {
	var out []types.ContrarianEvent
	for i := 0; i < 40; i++ {
		won := i%3 != 0
		out = append(out, types.ContrarianEvent{
			ID:               "e",
			TradeTimestampMS: int64(i) * 1000,
			IsPriceContrarian: i%2 == 0,
			IsAgainstTrend:    i%2 == 0,
			IsAgainstOFI:      i%2 == 1,
			IsContrarian:      i%2 == 0,
			TradeNotional:    100,
			TradePrice:       0.4,
			OutcomeWon:       won,
		})
	}
	return out
}

func TestCompareModes_ReturnsAllFourModesAdjusted(t *testing.T) {
	events := compareTestEvents()
	eng := NewEngine(config.DefaultResearchConfig(), nil, func() []types.ContrarianEvent { return events })

	results := eng.Compare(types.DefaultAnalysisConfig(), 0.05)
	assert.Len(t, results, 4)

	seen := make(map[types.ContrarianMode]bool)
	for _, r := range results {
		seen[r.Mode] = true
		assert.GreaterOrEqual(t, r.AdjustedPValue, 0.0)
		assert.LessOrEqual(t, r.AdjustedPValue, 1.0)
	}
	assert.True(t, seen[types.ModePriceOnly])
	assert.True(t, seen[types.ModeVsTrend])
	assert.True(t, seen[types.ModeVsOFI])
	assert.True(t, seen[types.ModeVsBoth])
}
