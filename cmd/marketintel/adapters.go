package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/marketintel/internal/collaborators"
	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

// newEventSource adapts the warehouse events repo to the
// research.EventSource shape the engine expects, which takes no
// context and returns no error. A storage failure degrades to an
// empty pool with a logged warning rather than a panic, matching the
// StorageUnavailable read-degrades policy applied everywhere else.
func newEventSource(repo *persistence.Repository) research.EventSource {
	return func() []types.ContrarianEvent {
		if repo == nil {
			return nil
		}
		events, err := repo.Events.ListSince(context.Background(), time.Time{})
		if err != nil {
			log.Warn().Err(err).Msg("event source: warehouse read failed, degrading to empty pool")
			return nil
		}
		return events
	}
}

// newMarketSource adapts the market-data collaborator to
// research.MarketSource.
func newMarketSource(client collaborators.MarketClient) research.MarketSource {
	return func(ctx context.Context, lookbackDays int) ([]types.ResolvedMarket, error) {
		return client.ResolvedMarkets(ctx, lookbackDays)
	}
}

// newTradeHistorySource builds the pre-close TradeHistory for one
// market out of the warehouse trade tape plus on-demand wallet
// enrichment. The warehouse schema (spec §6) has no historical
// order-book table, so BookAtTradeTime is left nil (the book-derived
// event fields stay zero) and the mid and OFI figures are approximated
// from the trades inside the window: the first windowed trade's price
// stands in for the mid 30 minutes before, the last windowed trade's
// price for the mid at trade time (one value shared by every trade of
// the market), and buy-minus-sell notional for OFI.
func newTradeHistorySource(repo *persistence.Repository, explorer collaborators.BlockExplorerClient) research.TradeHistorySource {
	return func(ctx context.Context, market types.ResolvedMarket, windowMinutes int) (research.TradeHistory, error) {
		trades, err := repo.Trades.ListByCondition(ctx, market.ConditionID, "")
		if err != nil {
			return research.TradeHistory{}, err
		}

		windowMS := int64(windowMinutes) * 60 * 1000
		cutoff := market.EndDate.UnixMilli() - windowMS
		windowed := make([]types.Trade, 0, len(trades))
		for _, t := range trades {
			if t.TimestampMS >= cutoff {
				windowed = append(windowed, t)
			}
		}

		hist := research.TradeHistory{
			Trades:           windowed,
			WalletEnrichment: make(map[string]types.WalletEnrichment, len(windowed)),
		}
		for i, t := range windowed {
			hist.PreCloseNotionals = append(hist.PreCloseNotionals, t.Notional())
			if i == 0 {
				hist.MidAt30mBefore = t.Price
			}
			hist.MidAtTradeTime = t.Price
			if _, seen := hist.WalletEnrichment[t.TakerAddress]; !seen && explorer != nil {
				w, err := explorer.WalletEnrichment(ctx, t.TakerAddress)
				if err != nil {
					log.Warn().Err(err).Str("address", t.TakerAddress).Msg("wallet enrichment lookup failed")
				} else {
					hist.WalletEnrichment[t.TakerAddress] = w
				}
			}
		}
		hist.OFI30m = netNotionalImbalance(windowed)
		hist.ForwardPrice = forwardPriceFunc(windowed)
		return hist, nil
	}
}

// netNotionalImbalance is the buy-notional-minus-sell-notional proxy
// for OFI used when no order-book history is available.
func netNotionalImbalance(trades []types.Trade) float64 {
	var net float64
	for _, t := range trades {
		if t.Side == types.Buy {
			net += t.Notional()
		} else {
			net -= t.Notional()
		}
	}
	return net
}

// forwardPriceFunc finds the first trade at or after
// tradeTimestampMS+offsetMS and reports its price.
func forwardPriceFunc(trades []types.Trade) func(tradeTimestampMS, offsetMS int64) (float64, bool) {
	return func(tradeTimestampMS, offsetMS int64) (float64, bool) {
		target := tradeTimestampMS + offsetMS
		for _, t := range trades {
			if t.TimestampMS >= target {
				return t.Price, true
			}
		}
		return 0, false
	}
}

// newEventSink adapts the warehouse events repo to research.EventSink.
func newEventSink(repo *persistence.Repository) research.EventSink {
	return func(ctx context.Context, events []types.ContrarianEvent) (int, error) {
		return repo.Events.InsertBatch(ctx, events)
	}
}

// newWinRateSeries resolves the chronological win/loss series a
// strategy's monitor loop checks, directly off the warehouse events
// repo filtered by the strategy's own AnalysisConfig.
func newWinRateSeries(eng *research.Engine) func(strategy types.MonitoredStrategy) []float64 {
	return func(strategy types.MonitoredStrategy) []float64 {
		events := eng.Events(strategy.Config)
		series := make([]float64, len(events))
		for i, e := range events {
			if e.OutcomeWon {
				series[i] = 1
			}
		}
		return series
	}
}

// newAlertSink persists newly raised drift alerts append-only.
func newAlertSink(repo *persistence.Repository) func(alerts []types.DriftAlert) {
	return func(alerts []types.DriftAlert) {
		for _, a := range alerts {
			if err := repo.Alerts.Insert(context.Background(), a); err != nil {
				log.Error().Err(err).Str("strategy_id", a.StrategyID).Msg("failed to persist drift alert")
			}
		}
	}
}
