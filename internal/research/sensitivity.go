package research

import (
	"fmt"
	"math"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// applyParameterValue returns a copy of base with the named field set
// to value. Supported parameters mirror AnalysisConfig's tunables.
func applyParameterValue(base types.AnalysisConfig, parameter string, value interface{}) (types.AnalysisConfig, error) {
	ac := base
	switch parameter {
	case "minSizeUsd":
		v, ok := toFloat(value)
		if !ok {
			return ac, fmt.Errorf("minSizeUsd requires a numeric value, got %T", value)
		}
		ac.MinSizeUSD = v
	case "windowMinutes":
		v, ok := toFloat(value)
		if !ok {
			return ac, fmt.Errorf("windowMinutes requires a numeric value, got %T", value)
		}
		ac.WindowMinutes = int(v)
	case "maxWalletAgeDays":
		v, ok := toFloat(value)
		if !ok {
			return ac, fmt.Errorf("maxWalletAgeDays requires a numeric value, got %T", value)
		}
		ac.MaxWalletAgeDays = v
	case "maxSpreadBps":
		v, ok := toFloat(value)
		if !ok {
			return ac, fmt.Errorf("maxSpreadBps requires a numeric value, got %T", value)
		}
		ac.MaxSpreadBps = v
	case "contrarianMode":
		v, ok := value.(string)
		if !ok {
			return ac, fmt.Errorf("contrarianMode requires a string value, got %T", value)
		}
		ac.ContrarianMode = types.ContrarianMode(v)
	default:
		return ac, fmt.Errorf("unknown sensitivity parameter %q", parameter)
	}
	return ac, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// RunSensitivityAnalysis implements the "Sensitivity analysis" clause
// of §4.D: recompute P&L metrics for each value of a single parameter
// and report the delta ROI vs. the base configuration.
func RunSensitivityAnalysis(source EventSource, cfg config.ResearchConfig, baseConfig types.AnalysisConfig, parameter string, values []interface{}) ([]types.SensitivityPoint, error) {
	allEvents := source()
	baseMetrics := ComputePnL(applyFilters(allEvents, cfg, baseConfig))

	points := make([]types.SensitivityPoint, 0, len(values))
	for _, v := range values {
		ac, err := applyParameterValue(baseConfig, parameter, v)
		if err != nil {
			return nil, err
		}
		metrics := ComputePnL(applyFilters(allEvents, cfg, ac))
		deltaROI := metrics.ROI - baseMetrics.ROI
		points = append(points, types.SensitivityPoint{
			Value:         v,
			Metrics:       metrics,
			DeltaROI:      deltaROI,
			IsSignificant: math.Abs(deltaROI) > cfg.SensitivitySignificantDeltaROI,
		})
	}
	return points, nil
}
