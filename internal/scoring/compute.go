package scoring

import (
	"time"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

// Engine computes scores from feature vectors and rolling state
// (§4.C). It reads the token's trade window for triggering-trade
// surfacing but holds no rolling state of its own.
type Engine struct {
	cfg        config.ScoringConfig
	stateEng   *state.Engine
	lookupAge  WalletAgeLookup
}

// NewEngine wires a scoring Engine to the shared rolling-state engine
// and an optional wallet-age lookup (nil disables enrichment).
func NewEngine(cfg config.ScoringConfig, stateEng *state.Engine, lookupAge WalletAgeLookup) *Engine {
	return &Engine{cfg: cfg, stateEng: stateEng, lookupAge: lookupAge}
}

// ComputeScores implements computeScores(tokenId, conditionId, nowMs,
// features, targetSizeUsd) → Score. book carries the raw spread/depth
// figures the execution score needs in natural units (nil when there
// is no current book, matching fv.OrderBook.HasBook == false).
func (e *Engine) ComputeScores(tokenID types.TokenID, conditionID string, nowMS int64, fv types.FeatureVector, book *types.BookMetrics, currentMid float64, targetSizeUSD float64) types.Score {
	if targetSizeUSD <= 0 {
		targetSizeUSD = e.cfg.TargetSizeUSD
	}

	anomaly := computeAnomaly(fv)
	triggered := anomaly >= e.cfg.AnomalyTriggerThreshold
	tripleSignal := computeTripleSignal(e.cfg, fv)

	exec := computeExecution(e.cfg, fv, book, targetSizeUSD)
	edge := computeEdge(fv, anomaly, exec.Score, currentMid)

	composite := clamp01(((anomaly + exec.Score + edge.Score) / 3) * fv.TimeToClose.RampMultiplier)
	signalStrength := types.BucketSignalStrength(composite)

	var triggering []types.TriggeringTrade
	var highest *types.TriggeringTrade
	if e.stateEng != nil {
		trades := e.stateEng.Trades(tokenID, nowMS)
		q95 := e.stateEng.TradeSizeQuantile(tokenID, 95)
		triggering, highest = computeTriggeringTrades(trades, q95, e.lookupAge)
	}

	return types.Score{
		TokenID:     tokenID,
		ConditionID: conditionID,
		TimestampMS: nowMS,
		ComputedAt:  time.UnixMilli(nowMS).UTC(),

		Anomaly:      anomaly,
		TripleSignal: tripleSignal,

		Execution:           exec.Score,
		SlippageEstimateBps: exec.SlippageEstimateBps,
		FillProbability:     exec.FillProbability,
		DepthAtLimit:        exec.DepthAtLimit,

		Edge:                 edge.Score,
		ImpliedProbability:   edge.ImpliedProbability,
		EstimatedProbability: edge.EstimatedProbability,
		EdgeConfidence:       edge.EdgeConfidence,
		AlignedSignals:       edge.AlignedSignals,

		Composite:      composite,
		RampMultiplier: fv.TimeToClose.RampMultiplier,
		SignalStrength: signalStrength,

		TriggeringTrades: triggering,
		HighestTrade1h:   highest,

		Triggered: triggered,
	}
}

// ShouldEnqueue implements §4.C's downstream-queue gate: emit a job
// only when the signal is non-"none" and outside the no-trade zone.
func ShouldEnqueue(score types.Score, ttc types.TimeToCloseFeatures) bool {
	return score.SignalStrength != types.SignalNone && !ttc.InNoTradeZone
}
