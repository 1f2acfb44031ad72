package monitor

import (
	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// currentHalfKellyAssumedPrice is the avg-price=0.5 simplification
// noted in spec.md §9: recalibration always assumes an average price
// of 0.5 regardless of the strategy's actual price distribution. This
// is a known, deliberately-preserved simplification, not a bug.
const currentHalfKellyAssumedPrice = 0.5

// RecalibrateKelly implements the `recalibrateKelly` clause of §4.E.
func RecalibrateKelly(baseline, current types.PnLMetrics, cfg config.MonitorConfig) float64 {
	if current.N < cfg.MinSampleSizeForAlert {
		return baseline.KellyFraction
	}

	b := (1 - currentHalfKellyAssumedPrice) / currentHalfKellyAssumedPrice
	q := 1 - current.WinRate
	currentHalfKelly := 0.0
	if b != 0 {
		k := (current.WinRate*b - q) / b
		if k > 0 {
			currentHalfKelly = 0.5 * k
		}
	}

	maxAdj := cfg.MaxKellyAdjustment
	lower := baseline.KellyFraction * (1 - maxAdj)
	upper := baseline.KellyFraction * (1 + maxAdj)
	if lower > upper {
		lower, upper = upper, lower
	}

	if currentHalfKelly < lower {
		return lower
	}
	if currentHalfKelly > upper {
		return upper
	}
	return currentHalfKelly
}
