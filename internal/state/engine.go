// Package state implements the rolling per-token statistics engine
// (spec.md §4.A): streaming quantiles, robust z-scores, a Hawkes-style
// burst proxy, and CUSUM change-point detection over a bounded trade
// window. Ownership is single-writer per token (§5): callers are
// expected to serialize RecordTrade/RecordOrderbook per token, e.g. by
// routing ingest through a per-token worker. The Engine itself guards
// its token map with a mutex so lookups and first-touch creation are
// safe from any goroutine, but does not serialize concurrent writers
// for the same token.
package state

import (
	"sync"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// TokenState bundles every rolling structure the feature computer
// needs for one token.
type TokenState struct {
	mu sync.Mutex

	digest *TDigest
	window *TradeWindow
	hawkes *HawkesProxy

	cusumTradeRate  *CUSUMDetector
	cusumSpread     *CUSUMDetector
	cusumImbalance  *CUSUMDetector

	lastBook   *types.BookMetrics
	lastBookMS int64

	priceHistory []pricePoint
}

type pricePoint struct {
	ts    int64
	price float64
}

// priceHistoryHorizonMS bounds how far back impact/drift features look.
const priceHistoryHorizonMS = 60 * 60 * 1000

func newTokenState(cfg config.StateConfig) *TokenState {
	return &TokenState{
		digest:         NewTDigest(cfg.TDigestCompression),
		window:         NewTradeWindow(cfg.TradeWindowMinutes),
		hawkes:         NewHawkesProxy(cfg.HawkesBaselineMu, cfg.HawkesExcitationAlpha, cfg.HawkesDecayBeta),
		cusumTradeRate: NewCUSUMDetector(cfg.CUSUMDriftK, cfg.CUSUMThreshold),
		cusumSpread:    NewCUSUMDetector(cfg.CUSUMDriftK, cfg.CUSUMThreshold),
		cusumImbalance: NewCUSUMDetector(cfg.CUSUMDriftK, cfg.CUSUMThreshold),
	}
}

// Engine owns the per-token rolling state map.
type Engine struct {
	cfg config.StateConfig

	mu     sync.RWMutex
	tokens map[types.TokenID]*TokenState
}

// NewEngine creates an engine driven by the given config.
func NewEngine(cfg config.StateConfig) *Engine {
	return &Engine{cfg: cfg, tokens: make(map[types.TokenID]*TokenState)}
}

func (e *Engine) stateFor(tokenID types.TokenID) *TokenState {
	e.mu.RLock()
	s, ok := e.tokens[tokenID]
	e.mu.RUnlock()
	if ok {
		return s
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.tokens[tokenID]; ok {
		return s
	}
	s = newTokenState(e.cfg)
	e.tokens[tokenID] = s
	return s
}

// RecordTrade folds a trade into the token's digest, window, Hawkes
// intensity, trade-rate CUSUM, and price history.
func (e *Engine) RecordTrade(tokenID types.TokenID, trade types.Trade) {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.digest.Add(trade.Notional())
	s.window.Record(trade)
	s.hawkes.Record(trade.TimestampMS)

	rate := float64(s.window.CountSince(trade.TimestampMS, 60*1000))
	s.cusumTradeRate.Observe(rate, trade.TimestampMS)

	s.priceHistory = append(s.priceHistory, pricePoint{ts: trade.TimestampMS, price: trade.Price})
	cutoff := trade.TimestampMS - priceHistoryHorizonMS
	i := 0
	for i < len(s.priceHistory) && s.priceHistory[i].ts < cutoff {
		i++
	}
	if i > 0 {
		s.priceHistory = s.priceHistory[i:]
	}
}

// RecordOrderbook folds in a new book snapshot's derived metrics,
// feeding the spread and imbalance CUSUM detectors.
func (e *Engine) RecordOrderbook(tokenID types.TokenID, metrics types.BookMetrics, nowMS int64) {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastBook = &metrics
	s.lastBookMS = nowMS
	s.cusumSpread.Observe(metrics.SpreadBps, nowMS)
	s.cusumImbalance.Observe(metrics.Imbalance, nowMS)
}

// TradeSizeQuantile returns the notional at percentile p (0-100) of
// the token's T-Digest, which covers every trade recorded for the token
// (the digest is not windowed).
func (e *Engine) TradeSizeQuantile(tokenID types.TokenID, p float64) float64 {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.digest.Percentile(p)
}

// TradeSizePercentileRank returns the percentile rank of notional
// within the token's observed distribution.
func (e *Engine) TradeSizePercentileRank(tokenID types.TokenID, notional float64) float64 {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.digest.PercentileRank(notional)
}

// RobustStatsFor computes median/MAD over the retained window's
// notionals as of nowMs.
func (e *Engine) RobustStatsFor(tokenID types.TokenID, nowMS int64) RobustStats {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeRobustStats(s.window.Notionals(nowMS))
}

// HawkesIntensity returns the decayed intensity as of nowMs without
// recording a new event.
func (e *Engine) HawkesIntensity(tokenID types.TokenID, nowMS int64) float64 {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hawkes.IntensityAt(nowMS)
}

// HawkesIntensityRatio returns intensity/mu as of nowMs.
func (e *Engine) HawkesIntensityRatio(tokenID types.TokenID, nowMS int64) float64 {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hawkes.IntensityRatio(nowMS)
}

// IsBurst reports whether the token is currently in a burst state.
func (e *Engine) IsBurst(tokenID types.TokenID, nowMS int64) bool {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hawkes.IsBurst(nowMS)
}

// TradeCounts returns the number of trades retained in the last 1 and
// 5 minutes as of nowMs.
func (e *Engine) TradeCounts(tokenID types.TokenID, nowMS int64) (oneMin int, fiveMin int) {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.CountSince(nowMS, 60*1000), s.window.CountSince(nowMS, 5*60*1000)
}

// Trades returns a copy of the trades currently retained in the
// token's rolling window, evaluated as of nowMs.
func (e *Engine) Trades(tokenID types.TokenID, nowMS int64) []types.Trade {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.window.Snapshot(nowMS)
	out := make([]types.Trade, len(snap))
	copy(out, snap)
	return out
}

// TradeCount returns the total retained trade count (the full rolling
// window, e.g. 60 minutes).
func (e *Engine) TradeCount(tokenID types.TokenID, nowMS int64) int {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.window.Snapshot(nowMS))
}

// InterArrivalStats returns the inter-arrival gap seconds for the
// retained window, used by burst diagnostics.
func (e *Engine) InterArrivalStats(tokenID types.TokenID, nowMS int64) []float64 {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.InterArrivalSeconds(nowMS)
}

// CUSUMState is a read-only snapshot of a single detector's current
// focus statistic, alarm state, and direction.
type CUSUMState struct {
	FocusStatistic float64
	Alarmed        bool
	Increase       bool
	Decrease       bool
	ChangePointMS  *int64
}

func snapshotCUSUM(d *CUSUMDetector) CUSUMState {
	inc, dec := d.Direction()
	return CUSUMState{
		FocusStatistic: d.FocusStatistic(),
		Alarmed:        d.Alarmed(),
		Increase:       inc,
		Decrease:       dec,
		ChangePointMS:  d.ChangePointTimestamp(),
	}
}

// CUSUMTradeRate, CUSUMSpread, and CUSUMImbalance expose the three
// change-point detectors tracked per token (§4.A "per metric").
func (e *Engine) CUSUMTradeRate(tokenID types.TokenID) CUSUMState {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotCUSUM(s.cusumTradeRate)
}

func (e *Engine) CUSUMSpread(tokenID types.TokenID) CUSUMState {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotCUSUM(s.cusumSpread)
}

func (e *Engine) CUSUMImbalance(tokenID types.TokenID) CUSUMState {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotCUSUM(s.cusumImbalance)
}

// ResetCUSUM re-arms all three detectors for a token after a latched
// change point has been consumed downstream.
func (e *Engine) ResetCUSUM(tokenID types.TokenID) {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cusumTradeRate.Reset()
	s.cusumSpread.Reset()
	s.cusumImbalance.Reset()
}

// LastBook returns the most recently recorded book metrics, if any.
func (e *Engine) LastBook(tokenID types.TokenID) (types.BookMetrics, int64, bool) {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastBook == nil {
		return types.BookMetrics{}, 0, false
	}
	return *s.lastBook, s.lastBookMS, true
}

// PriceWindow returns the most recent recorded price (latest) and the
// last recorded price at or before nowMS-horizonMS (past; the oldest
// recorded price when none is that old), for drift/impact features.
// ok is false if there is no trade history yet.
func (e *Engine) PriceWindow(tokenID types.TokenID, nowMS int64, horizonMS int64) (latest float64, past float64, ok bool) {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.priceHistory) == 0 {
		return 0, 0, false
	}
	latest = s.priceHistory[len(s.priceHistory)-1].price
	target := nowMS - horizonMS
	past = s.priceHistory[0].price
	for _, p := range s.priceHistory {
		if p.ts <= target {
			past = p.price
			continue
		}
		break
	}
	return latest, past, true
}

// PriceAt returns the first recorded price at or after targetMS, used
// to sample forward drift anchored at a specific trade timestamp. ok
// is false if no such sample has arrived yet.
func (e *Engine) PriceAt(tokenID types.TokenID, targetMS int64) (price float64, ok bool) {
	s := e.stateFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.priceHistory {
		if p.ts >= targetMS {
			return p.price, true
		}
	}
	return 0, false
}
