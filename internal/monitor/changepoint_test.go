package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
)

func TestCheckRollingWinRateCUSUM_TooFewSamplesNoAlert(t *testing.T) {
	cfg := config.DefaultMonitorConfig()
	_, ok := checkRollingWinRateCUSUM("s1", []float64{1, 0, 1, 0, 1}, cfg, time.Now())
	assert.False(t, ok)
}

func TestCheckRollingWinRateCUSUM_DetectsShift(t *testing.T) {
	cfg := config.DefaultMonitorConfig()
	cfg.CUSUMWindowTrades = 5

	outcomes := make([]float64, 0, 100)
	for i := 0; i < 50; i++ {
		outcomes = append(outcomes, 1) // all wins
	}
	for i := 0; i < 50; i++ {
		outcomes = append(outcomes, 0) // all losses: sharp shift down
	}

	alert, ok := checkRollingWinRateCUSUM("s1", outcomes, cfg, time.Now())
	assert.True(t, ok)
	assert.Equal(t, "rolling_win_rate_cusum", alert.Metric)
}
