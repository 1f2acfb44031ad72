package features

import (
	"time"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

// Computer turns rolling state plus per-event market/trade/book/wallet
// data into a FeatureVector (§4.B). It owns no state itself beyond its
// config; all rolling state lives in the injected Engine.
type Computer struct {
	cfg      config.FeatureConfig
	stateCfg config.StateConfig
	engine   *state.Engine
}

// NewComputer wires a Computer to its rolling-state engine. The engine
// is shared with the ingest path that calls RecordTrade/RecordOrderbook.
func NewComputer(cfg config.FeatureConfig, stateCfg config.StateConfig, engine *state.Engine) *Computer {
	return &Computer{cfg: cfg, stateCfg: stateCfg, engine: engine}
}

// Inputs bundles the event-specific data computeFeatures needs beyond
// what the rolling state engine already tracks.
type Inputs struct {
	EndDateMS int64
	Trade     *types.Trade
	Book      *types.BookMetrics
	Wallet    *types.WalletEnrichment
}

// ComputeFeatures implements the single operation of §4.B:
// computeFeatures(tokenId, conditionId, nowMs, trade?, bookWithMetrics?).
func (c *Computer) ComputeFeatures(tokenID types.TokenID, conditionID string, nowMS int64, in Inputs) types.FeatureVector {
	return types.FeatureVector{
		TokenID:     tokenID,
		ConditionID: conditionID,
		TimestampMS: nowMS,
		ComputedAt:  time.UnixMilli(nowMS).UTC(),

		TimeToClose: computeTimeToClose(c.cfg, in.EndDateMS, nowMS),
		TradeSize:   computeTradeSize(c.cfg, c.engine, tokenID, in.Trade, nowMS),
		OrderBook:   computeOrderBook(in.Book),
		Wallet:      computeWallet(in.Wallet, nowMS),
		Impact:      computeImpact(c.engine, tokenID, in.Trade),
		Burst:       computeBurst(c.engine, tokenID, nowMS),
		ChangePoint: computeChangePoint(c.engine, tokenID, c.stateCfg.CUSUMThreshold),
	}
}
