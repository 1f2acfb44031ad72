package research

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketintel/internal/types"
)

// TestIsResolvedOutcome_ScenarioS4 covers the accept/reject cases of
// spec scenario S4. String-vs-numeric parsing happens upstream of this
// function (at the collaborator boundary); here the prices already
// arrive as float64, so the "invalid JSON"/"missing field" cases are
// represented by the caller never constructing a ResolvedMarket at all.
func TestIsResolvedOutcome_ScenarioS4(t *testing.T) {
	outcome, ok := isResolvedOutcome(1, 0)
	assert.True(t, ok)
	assert.Equal(t, types.OutcomeYes, outcome)

	outcome, ok = isResolvedOutcome(0, 1)
	assert.True(t, ok)
	assert.Equal(t, types.OutcomeNo, outcome)

	_, ok = isResolvedOutcome(0.9, 0.1)
	assert.False(t, ok)
}

func TestEnrichTrade_NaturalKeyIsDeterministic(t *testing.T) {
	market := types.ResolvedMarket{
		ConditionID:    "cond-1",
		EndDate:        time.UnixMilli(1_700_000_000_000),
		WinningOutcome: types.OutcomeYes,
		FinalYesPrice:  1,
		FinalNoPrice:   0,
	}
	trade := types.Trade{
		TokenID:      "token-yes",
		TimestampMS:  1_699_999_000_000,
		TakerAddress: "0xabc",
		Side:         types.Buy,
		Price:        0.3,
		Size:         100,
	}
	hist := TradeHistory{PreCloseNotionals: []float64{10, 20, 30}}

	e1 := enrichTrade(market, trade, hist, nil)
	e2 := enrichTrade(market, trade, hist, nil)

	assert.Equal(t, e1.ID, e2.ID, "same (conditionId, tokenId, tradeTimestamp) must produce the same natural key")
	assert.Equal(t, "cond-1:token-yes:1699999000000", e1.ID)
}

func TestEnrichTrade_OutcomeWonForWinningSide(t *testing.T) {
	market := types.ResolvedMarket{
		ConditionID:    "cond-2",
		EndDate:        time.UnixMilli(2_000_000_000_000),
		WinningOutcome: types.OutcomeYes,
		YesTokenID:     "token-yes",
		NoTokenID:      "token-no",
	}
	trade := types.Trade{TokenID: "token-yes", TimestampMS: 1_999_000_000_000, Side: types.Buy, Price: 0.5, Size: 10}
	hist := TradeHistory{}

	e := enrichTrade(market, trade, hist, nil)
	assert.Equal(t, types.OutcomeYes, e.TradedOutcome)
	assert.True(t, e.OutcomeWon)
}

func TestEnrichTrade_OutcomeLostForLosingSide(t *testing.T) {
	market := types.ResolvedMarket{
		ConditionID:    "cond-3",
		EndDate:        time.UnixMilli(2_000_000_000_000),
		WinningOutcome: types.OutcomeYes,
		YesTokenID:     "token-yes",
		NoTokenID:      "token-no",
	}
	trade := types.Trade{TokenID: "token-no", TimestampMS: 1_999_000_000_000, Side: types.Buy, Price: 0.5, Size: 10}
	hist := TradeHistory{}

	e := enrichTrade(market, trade, hist, nil)
	assert.Equal(t, types.OutcomeNo, e.TradedOutcome)
	assert.False(t, e.OutcomeWon, "a trade on the No leg of a Yes-resolved market must not be recorded as a win")
}

func TestRunBackfill_SkipsUnresolvedMarkets(t *testing.T) {
	markets := func(ctx context.Context, lookbackDays int) ([]types.ResolvedMarket, error) {
		return []types.ResolvedMarket{
			{ConditionID: "rejected", FinalYesPrice: 0.9, FinalNoPrice: 0.1},
			{ConditionID: "accepted", FinalYesPrice: 1, FinalNoPrice: 0, EndDate: time.Now()},
		}, nil
	}
	var historyCalls int
	history := func(ctx context.Context, market types.ResolvedMarket, windowMinutes int) (TradeHistory, error) {
		historyCalls++
		return TradeHistory{}, nil
	}
	var sunk []types.ContrarianEvent
	sink := func(ctx context.Context, events []types.ContrarianEvent) (int, error) {
		sunk = append(sunk, events...)
		return len(events), nil
	}

	job := &types.BackfillJob{ID: "job-1", Config: types.DefaultAnalysisConfig()}
	err := RunBackfill(context.Background(), job, markets, history, sink, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, historyCalls, "trade history should only be fetched for resolved markets")
	assert.Equal(t, types.JobCompleted, job.Status)
	assert.Equal(t, 2, job.ItemsProcessed)
	assert.NotNil(t, job.CompletedAt)
}

func TestRunBackfill_TerminatesOnUpstreamFailure(t *testing.T) {
	markets := func(ctx context.Context, lookbackDays int) ([]types.ResolvedMarket, error) {
		return nil, assertError{}
	}
	job := &types.BackfillJob{ID: "job-2", Config: types.DefaultAnalysisConfig()}
	err := RunBackfill(context.Background(), job, markets, nil, nil, nil)

	require.Error(t, err)
	assert.Equal(t, types.JobFailed, job.Status)
	assert.NotEmpty(t, job.ErrorMessage)
}

type assertError struct{}

func (assertError) Error() string { return "upstream unavailable" }
