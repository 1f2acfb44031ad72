package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

func TestRecalibrateKelly_SmallSampleReturnsBaseline(t *testing.T) {
	cfg := config.DefaultMonitorConfig()
	baseline := types.PnLMetrics{KellyFraction: 0.2}
	current := types.PnLMetrics{N: 5, WinRate: 0.9}

	got := RecalibrateKelly(baseline, current, cfg)
	assert.Equal(t, 0.2, got)
}

func TestRecalibrateKelly_ClampedToMaxAdjustment(t *testing.T) {
	cfg := config.DefaultMonitorConfig() // maxAdj = 0.5
	baseline := types.PnLMetrics{KellyFraction: 0.2}
	current := types.PnLMetrics{N: 100, WinRate: 0.99} // would imply a huge half-Kelly

	got := RecalibrateKelly(baseline, current, cfg)
	assert.LessOrEqual(t, got, 0.2*1.5+1e-9)
	assert.GreaterOrEqual(t, got, 0.2*0.5-1e-9)
}

func TestRecalibrateKelly_WithinBand(t *testing.T) {
	cfg := config.DefaultMonitorConfig()
	baseline := types.PnLMetrics{KellyFraction: 0.2}
	current := types.PnLMetrics{N: 100, WinRate: 0.55}

	got := RecalibrateKelly(baseline, current, cfg)
	assert.GreaterOrEqual(t, got, 0.0)
}
