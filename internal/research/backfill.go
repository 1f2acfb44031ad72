package research

import (
	"context"
	"fmt"
	"time"

	"github.com/sawpanic/marketintel/internal/apperrors"
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

// isResolvedOutcome implements S4: outcome prices must be exactly
// [1,0] or [0,1] (string or numeric forms accepted); anything else is
// rejected.
func isResolvedOutcome(yesPrice, noPrice float64) (types.WinningOutcome, bool) {
	const eps = 1e-9
	switch {
	case approxEqual(yesPrice, 1, eps) && approxEqual(noPrice, 0, eps):
		return types.OutcomeYes, true
	case approxEqual(yesPrice, 0, eps) && approxEqual(noPrice, 1, eps):
		return types.OutcomeNo, true
	default:
		return "", false
	}
}

func approxEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// TradeHistory supplies the trades for one resolved market within a
// configurable window before close, plus the book-derived figures
// needed for contrarian enrichment.
type TradeHistory struct {
	Trades            []types.Trade
	PreCloseNotionals []float64 // for sizePercentile/sizeZScore against the market's own distribution
	MidAt30mBefore     float64
	MidAtTradeTime     float64
	OFI30m             float64
	BookAtTradeTime    *types.BookMetrics
	WalletEnrichment   map[string]types.WalletEnrichment // by taker address
	// ForwardPrice resolves the mid price at tradeTimestampMS+offsetMS,
	// when known (it requires history past the trade itself).
	ForwardPrice func(tradeTimestampMS int64, offsetMS int64) (float64, bool)
}

// MarketSource pages through resolved markets.
type MarketSource func(ctx context.Context, lookbackDays int) ([]types.ResolvedMarket, error)

// TradeHistorySource resolves the pre-close trade history for one market.
type TradeHistorySource func(ctx context.Context, market types.ResolvedMarket, windowMinutes int) (TradeHistory, error)

// EventSink persists newly enriched events, skipping duplicates by
// the natural key (conditionId, tokenId, tradeTimestamp).
type EventSink func(ctx context.Context, events []types.ContrarianEvent) (inserted int, err error)

// enrichTrade implements the per-trade enrichment clause of
// "Backfill" (§4.D).
func enrichTrade(market types.ResolvedMarket, trade types.Trade, hist TradeHistory, eng *state.Engine) types.ContrarianEvent {
	notional := trade.Notional()

	stats := state.ComputeRobustStats(hist.PreCloseNotionals)
	digest := state.NewTDigest(100)
	for _, n := range hist.PreCloseNotionals {
		digest.Add(n)
	}
	sizePercentile := digest.PercentileRank(notional)
	sizeZScore := stats.RobustZ(notional)

	isPriceContrarian := trade.Price < 0.50

	priceTrend30m := hist.MidAtTradeTime - hist.MidAt30mBefore
	tradeIsBuy := trade.Side == types.Buy
	isAgainstTrend := (tradeIsBuy && priceTrend30m < 0) || (!tradeIsBuy && priceTrend30m > 0)

	ofi30m := hist.OFI30m
	isAgainstOFI := (tradeIsBuy && ofi30m < 0) || (!tradeIsBuy && ofi30m > 0)

	isContrarian := isAgainstTrend && isAgainstOFI

	var bookImbalance, thinOpposite, spreadBps float64
	var isAsymmetric bool
	if hist.BookAtTradeTime != nil {
		bookImbalance = hist.BookAtTradeTime.Imbalance
		thinOpposite = 1 - hist.BookAtTradeTime.ThinSideRatio
		spreadBps = hist.BookAtTradeTime.SpreadBps
		absImb := bookImbalance
		if absImb < 0 {
			absImb = -absImb
		}
		isAsymmetric = absImb > 0.5 && hist.BookAtTradeTime.ThinSideRatio < 0.3
	}

	walletAgeDays := -1.0
	walletTxCount := int64(0)
	isNewWallet := false
	if w, ok := hist.WalletEnrichment[trade.TakerAddress]; ok {
		walletAgeDays = w.AgeDays(trade.TimestampMS)
		walletTxCount = w.TransactionCount
		isNewWallet = walletAgeDays >= 0 && walletAgeDays < 7
	}

	tradedOutcome := types.OutcomeYes
	if trade.TokenID == market.NoTokenID {
		tradedOutcome = types.OutcomeNo
	}
	outcomeWon := tradedOutcome == market.WinningOutcome

	var drift30m, drift60m float64
	if hist.ForwardPrice != nil {
		if p, ok := hist.ForwardPrice(trade.TimestampMS, 30*60*1000); ok {
			drift30m = p - trade.Price
		}
		if p, ok := hist.ForwardPrice(trade.TimestampMS, 60*60*1000); ok {
			drift60m = p - trade.Price
		}
	}

	ttcMinutes := float64(market.EndDate.UnixMilli()-trade.TimestampMS) / (1000 * 60)

	return types.ContrarianEvent{
		ID:                 fmt.Sprintf("%s:%s:%d", market.ConditionID, trade.TokenID, trade.TimestampMS),
		ConditionID:        market.ConditionID,
		TokenID:            trade.TokenID,
		TradeTimestampMS:   trade.TimestampMS,
		MinutesBeforeClose: ttcMinutes,
		TradeSide:          trade.Side,
		TradePrice:         trade.Price,
		TradeSize:          trade.Size,
		TradeNotional:      notional,
		TakerAddress:       trade.TakerAddress,

		SizePercentile: sizePercentile,
		SizeZScore:     sizeZScore,
		IsTailTrade:    sizePercentile > 95,

		IsPriceContrarian: isPriceContrarian,
		PriceTrend30m:     priceTrend30m,
		IsAgainstTrend:    isAgainstTrend,
		OFI30m:            ofi30m,
		IsAgainstOFI:      isAgainstOFI,
		IsContrarian:      isContrarian,

		BookImbalance:     bookImbalance,
		ThinOppositeRatio: thinOpposite,
		SpreadBps:         spreadBps,
		IsAsymmetricBook:  isAsymmetric,

		WalletAgeDays:    walletAgeDays,
		WalletTradeCount: walletTxCount,
		IsNewWallet:      isNewWallet,

		TradedOutcome: tradedOutcome,
		OutcomeWon:    outcomeWon,
		Drift30m:      drift30m,
		Drift60m:      drift60m,
	}
}

// RunBackfill implements the "Backfill" clause of §4.D end to end:
// pages through resolved markets, enriches each market's pre-close
// trades, and persists new events idempotently. Failures terminate
// the current job (JobFailed) without corrupting neighbouring jobs.
func RunBackfill(ctx context.Context, job *types.BackfillJob, markets MarketSource, history TradeHistorySource, sink EventSink, eng *state.Engine) error {
	job.Status = types.JobRunning

	resolved, err := markets(ctx, job.Config.LookbackDays)
	if err != nil {
		job.Status = types.JobFailed
		job.ErrorMessage = err.Error()
		return &apperrors.TransientUpstream{Source: "resolved markets", Err: err}
	}
	job.ItemsTotal = len(resolved)

	for _, market := range resolved {
		if _, ok := isResolvedOutcome(market.FinalYesPrice, market.FinalNoPrice); !ok {
			job.ItemsProcessed++
			continue
		}

		hist, err := history(ctx, market, job.Config.WindowMinutes)
		if err != nil {
			job.Status = types.JobFailed
			job.ErrorMessage = err.Error()
			return &apperrors.TransientUpstream{Source: "trade history", Err: err}
		}

		events := make([]types.ContrarianEvent, 0, len(hist.Trades))
		for _, t := range hist.Trades {
			events = append(events, enrichTrade(market, t, hist, eng))
		}
		if _, err := sink(ctx, events); err != nil {
			job.Status = types.JobFailed
			job.ErrorMessage = err.Error()
			return &apperrors.StorageUnavailable{Store: "contrarian events warehouse", Err: err}
		}

		job.ItemsProcessed++
	}

	now := time.Now().UTC()
	job.CompletedAt = &now
	job.Status = types.JobCompleted
	return nil
}
