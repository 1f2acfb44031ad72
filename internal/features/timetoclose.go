// Package features computes the per-event feature vector (spec.md
// §4.B) from rolling state (internal/state), a market's metadata, an
// optional trade, and an optional current order book.
package features

import (
	"math"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// computeTimeToClose implements §4.B.1.
func computeTimeToClose(cfg config.FeatureConfig, endDateMS int64, nowMS int64) types.TimeToCloseFeatures {
	ttcMillis := endDateMS - nowMS
	if ttcMillis < 0 {
		ttcMillis = 0
	}
	ttcHours := float64(ttcMillis) / (1000 * 60 * 60)
	ttcSeconds := float64(ttcMillis) / 1000

	ramp := 1 + cfg.RampAlpha*math.Exp(-cfg.RampBeta*ttcHours)
	if ramp > cfg.RampMaxMultiplier {
		ramp = cfg.RampMaxMultiplier
	}

	ttcMinutes := ttcSeconds / 60
	return types.TimeToCloseFeatures{
		TTCMillis:      ttcMillis,
		TTCHours:       ttcHours,
		RampMultiplier: ramp,
		Within5Min:     ttcMinutes <= 5,
		Within15Min:    ttcMinutes <= 15,
		Within30Min:    ttcMinutes <= 30,
		Within60Min:    ttcMinutes <= 60,
		Within120Min:   ttcMinutes <= 120,
		InNoTradeZone:  ttcSeconds <= cfg.NoTradeZoneSeconds,
	}
}
