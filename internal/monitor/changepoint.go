package monitor

import (
	"fmt"
	"time"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/state"
	"github.com/sawpanic/marketintel/internal/types"
)

// checkRollingWinRateCUSUM implements the "CUSUM on rolling win rate"
// clause of §4.E: outcomes (0/1, chronological) are used as the caller
// passes them, with no lookback window applied here or by the
// serve/monitor wiring, which passes the strategy's whole filtered
// event history. They are bucketed into non-overlapping windows of
// cfg.CUSUMWindowTrades trades, and the per-window win rate is fed
// through a fresh CUSUM detector. The alert reports the window at
// which the detector first alarms.
func checkRollingWinRateCUSUM(strategyID string, outcomes []float64, cfg config.MonitorConfig, now time.Time) (types.DriftAlert, bool) {
	windowSize := cfg.CUSUMWindowTrades
	if windowSize <= 0 {
		windowSize = 10
	}
	if len(outcomes) < windowSize*2 {
		return types.DriftAlert{}, false
	}

	const driftK, threshold = 0.5, 5.0
	detector := state.NewCUSUMDetector(driftK, threshold)
	var lastAlarmRate float64
	var alarmed bool

	for i := 0; i+windowSize <= len(outcomes); i += windowSize {
		window := outcomes[i : i+windowSize]
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		rate := sum / float64(windowSize)
		tsMS := now.Add(-time.Duration(len(outcomes)-i) * time.Hour).UnixMilli()
		if detector.Observe(rate, tsMS) {
			alarmed = true
			lastAlarmRate = rate
		}
	}

	if !alarmed {
		return types.DriftAlert{}, false
	}

	return types.DriftAlert{
		StrategyID:     strategyID,
		AlertType:      types.AlertDrift,
		Metric:         "rolling_win_rate_cusum",
		Observed:       lastAlarmRate,
		DeviationSigma: detector.FocusStatistic(),
		Severity:       types.SeverityWarning,
		Message:        fmt.Sprintf("CUSUM change-point detected in rolling win rate (window=%d, rate=%.4f)", windowSize, lastAlarmRate),
		CreatedAt:      now,
	}, true
}
