package monitor

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

// binomialZ is the z-score of an observed rate against an expected
// rate with binomial standard error, over n observations.
func binomialZ(observed, expected float64, n int) float64 {
	if n == 0 {
		return 0
	}
	se := math.Sqrt(expected * (1 - expected) / float64(n))
	if se == 0 {
		return 0
	}
	return (observed - expected) / se
}

func severityForZ(z float64, cfg config.MonitorConfig) (types.AlertSeverity, bool) {
	az := math.Abs(z)
	switch {
	case az >= cfg.CriticalZ:
		return types.SeverityCritical, true
	case az >= cfg.WarningZ:
		return types.SeverityWarning, true
	default:
		return "", false
	}
}

// CheckHealth implements the periodic health-check clause of §4.E:
// recompute baseline-comparable metrics and emit z-score alerts per
// metric, a sample-size warning, and a CUSUM change-point check over
// the rolling win rate. The metrics cover the strategy's whole filtered
// event pool: research.Engine applies no time window, so the
// LookbackDays of 7 set below does not narrow them to the last 7 days.
// Returns the updated strategy plus any alerts raised by this check.
func CheckHealth(strategy types.MonitoredStrategy, cfg config.MonitorConfig, eng *research.Engine, recentWinRateSeries []float64) (types.MonitoredStrategy, []types.DriftAlert) {
	recentAC := strategy.Config
	recentAC.LookbackDays = 7
	current := eng.PnL(recentAC)

	var alerts []types.DriftAlert
	now := time.Now().UTC()

	checks := []struct {
		metric   string
		observed float64
		expected float64
	}{
		{"win_rate", current.WinRate, strategy.BaselineMetrics.WinRate},
		{"roi", current.ROI, strategy.BaselineMetrics.ROI},
		{"edge_points", current.EdgePoints / 100, strategy.BaselineMetrics.EdgePoints / 100},
	}
	for _, c := range checks {
		z := binomialZ(c.observed, c.expected, current.N)
		severity, triggered := severityForZ(z, cfg)
		if !triggered {
			continue
		}
		alerts = append(alerts, types.DriftAlert{
			StrategyID:     strategy.StrategyID,
			AlertType:      types.AlertDrift,
			Metric:         c.metric,
			Expected:       c.expected,
			Observed:       c.observed,
			DeviationSigma: z,
			Severity:       severity,
			Message:        fmt.Sprintf("%s deviated %.2fσ from baseline (observed=%.4f expected=%.4f)", c.metric, z, c.observed, c.expected),
			CreatedAt:      now,
		})
	}

	if current.N < cfg.MinSampleSizeForAlert {
		alerts = append(alerts, types.DriftAlert{
			StrategyID: strategy.StrategyID,
			AlertType:  types.AlertSampleSize,
			Metric:     "sample_size",
			Expected:   float64(cfg.MinSampleSizeForAlert),
			Observed:   float64(current.N),
			Severity:   types.SeverityWarning,
			Message:    fmt.Sprintf("sample size %d below minimum %d for reliable alerting", current.N, cfg.MinSampleSizeForAlert),
			CreatedAt:  now,
		})
	}

	if cpAlert, ok := checkRollingWinRateCUSUM(strategy.StrategyID, recentWinRateSeries, cfg, now); ok {
		alerts = append(alerts, cpAlert)
	}

	strategy.CurrentMetrics = current
	strategy.RecommendedKelly = RecalibrateKelly(strategy.BaselineMetrics, current, cfg)
	strategy.LastCheckAt = now
	strategy.IsHealthy = !hasWarningOrCritical(alerts)

	return strategy, alerts
}

func hasWarningOrCritical(alerts []types.DriftAlert) bool {
	for _, a := range alerts {
		if a.Severity == types.SeverityWarning || a.Severity == types.SeverityCritical {
			return true
		}
	}
	return false
}
