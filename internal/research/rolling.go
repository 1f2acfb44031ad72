package research

import (
	"time"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

const dayMS = int64(24 * 60 * 60 * 1000)

// ComputeRollingCorrelation implements the "Rolling correlation"
// clause of §4.D: daily-stepped windows of configurable width, each
// requiring at least cfg.MinRollingWindowEvents events.
func ComputeRollingCorrelation(events []types.ContrarianEvent, mode types.ContrarianMode, cfg config.ResearchConfig) []types.RollingCorrelationPoint {
	if len(events) == 0 {
		return nil
	}
	sorted := sortedByTimestamp(events)
	windowMS := int64(cfg.RollingWindowDays) * dayMS

	first := sorted[0].TradeTimestampMS
	last := sorted[len(sorted)-1].TradeTimestampMS

	var points []types.RollingCorrelationPoint
	for cursor := first; cursor <= last; cursor += dayMS {
		windowStart := cursor - windowMS
		var windowEvents []types.ContrarianEvent
		for _, e := range sorted {
			if e.TradeTimestampMS > windowStart && e.TradeTimestampMS <= cursor {
				windowEvents = append(windowEvents, e)
			}
		}
		if len(windowEvents) < cfg.MinRollingWindowEvents {
			continue
		}

		predictor, outcome := predictorOutcome(windowEvents, mode)
		r, _, ciLo, ciHi := pointBiserial(predictor, outcome)

		wins := 0
		for _, w := range outcome {
			if w {
				wins++
			}
		}
		winRate := float64(wins) / float64(len(windowEvents))

		points = append(points, types.RollingCorrelationPoint{
			Date:       time.UnixMilli(cursor).UTC(),
			R:          r,
			WinRate:    winRate,
			SampleSize: len(windowEvents),
			CILower:    ciLo,
			CIUpper:    ciHi,
		})
	}
	return points
}
