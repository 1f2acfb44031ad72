package research

import (
	"context"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

// Engine wires the research & optimization operations of §4.D to a
// concrete event source. It holds no rolling state of its own (the
// trade-level robust statistics used during backfill enrichment come
// from the shared state.Engine).
type Engine struct {
	cfg      config.ResearchConfig
	stateEng *state.Engine
	events   EventSource
}

// NewEngine wires a research Engine to the shared rolling-state engine
// (used only during backfill enrichment) and the event source the
// warehouse-backed EventSource should read from.
func NewEngine(cfg config.ResearchConfig, stateEng *state.Engine, events EventSource) *Engine {
	return &Engine{cfg: cfg, stateEng: stateEng, events: events}
}

// Backfill runs RunBackfill against this engine's wiring.
func (e *Engine) Backfill(ctx context.Context, job *types.BackfillJob, markets MarketSource, history TradeHistorySource, sink EventSink) error {
	return RunBackfill(ctx, job, markets, history, sink, e.stateEng)
}

// Events returns the event pool filtered by ac, for callers (the
// signals/events HTTP routes) that need the raw enriched events rather
// than a computed summary.
func (e *Engine) Events(ac types.AnalysisConfig) []types.ContrarianEvent {
	return applyFilters(e.events(), e.cfg, ac)
}

// CorrelationSummary implements the "Correlation summary" operation
// over the engine's filtered event pool.
func (e *Engine) CorrelationSummary(ac types.AnalysisConfig) types.CorrelationSummary {
	filtered := applyFilters(e.events(), e.cfg, ac)
	return ComputeCorrelationSummary(filtered, ac.ContrarianMode)
}

// RollingCorrelation implements the "Rolling correlation" operation.
func (e *Engine) RollingCorrelation(ac types.AnalysisConfig) []types.RollingCorrelationPoint {
	filtered := applyFilters(e.events(), e.cfg, ac)
	return ComputeRollingCorrelation(filtered, ac.ContrarianMode, e.cfg)
}

// Breakdown implements the "Breakdown" operation for one factor.
func (e *Engine) Breakdown(ac types.AnalysisConfig, factor string) []types.BreakdownGroup {
	filtered := applyFilters(e.events(), e.cfg, ac)
	return ComputeBreakdown(filtered, factor, e.cfg)
}

// ModelReport implements the "Model report" operation.
func (e *Engine) ModelReport(ac types.AnalysisConfig) *types.ModelReport {
	filtered := applyFilters(e.events(), e.cfg, ac)
	return ComputeModelReport(filtered, e.cfg)
}

// PnL implements the "P&L metrics" operation.
func (e *Engine) PnL(ac types.AnalysisConfig) types.PnLMetrics {
	return ComputePnL(applyFilters(e.events(), e.cfg, ac))
}

// GridSearch implements the "Grid search" operation.
func (e *Engine) GridSearch(gs types.GridSearchConfig) []types.OptimizationResult {
	return RunGridSearch(e.events, gs, e.cfg)
}

// Compare implements the "Compare" operation: FDR-adjusted correlation
// summaries for all four contrarian modes.
func (e *Engine) Compare(ac types.AnalysisConfig, fdrAlpha float64) []ModeComparison {
	return e.CompareModes(ac, fdrAlpha)
}

// SensitivityAnalysis implements the "Sensitivity analysis" operation.
func (e *Engine) SensitivityAnalysis(base types.AnalysisConfig, parameter string, values []interface{}) ([]types.SensitivityPoint, error) {
	return RunSensitivityAnalysis(e.events, e.cfg, base, parameter, values)
}
