package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

func TestComputeBreakdown_NewWalletGrouping(t *testing.T) {
	events := []types.ContrarianEvent{
		{IsNewWallet: true, OutcomeWon: true},
		{IsNewWallet: true, OutcomeWon: true},
		{IsNewWallet: true, OutcomeWon: false},
		{IsNewWallet: false, OutcomeWon: false},
		{IsNewWallet: false, OutcomeWon: false},
		{IsNewWallet: false, OutcomeWon: true},
	}
	cfg := config.DefaultResearchConfig()
	cfg.MinBreakdownGroupEvents = 2

	groups := ComputeBreakdown(events, FactorNewWallet, cfg)
	byGroup := map[string]types.BreakdownGroup{}
	for _, g := range groups {
		byGroup[g.Group] = g
	}

	newGroup := byGroup["new"]
	assert.Equal(t, 3, newGroup.N)
	assert.InDelta(t, 2.0/3.0, newGroup.WinRate, 1e-9)
	assert.LessOrEqual(t, newGroup.CILower, newGroup.WinRate)
	assert.GreaterOrEqual(t, newGroup.CIUpper, newGroup.WinRate)
}

func TestComputeBreakdown_FiltersSmallGroups(t *testing.T) {
	events := []types.ContrarianEvent{
		{IsNewWallet: true, OutcomeWon: true},
	}
	cfg := config.DefaultResearchConfig()
	cfg.MinBreakdownGroupEvents = 5

	groups := ComputeBreakdown(events, FactorNewWallet, cfg)
	assert.Empty(t, groups)
}

func TestTtcBucketLabel_Boundaries(t *testing.T) {
	assert.Equal(t, "0-15min", ttcBucketLabel(5))
	assert.Equal(t, "15-30min", ttcBucketLabel(20))
	assert.Equal(t, "30-60min", ttcBucketLabel(45))
	assert.Equal(t, "60+min", ttcBucketLabel(120))
}
