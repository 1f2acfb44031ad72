package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

func eventsWithWinRate(n int, winRate float64) []types.ContrarianEvent {
	wins := int(float64(n) * winRate)
	events := make([]types.ContrarianEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, types.ContrarianEvent{
			TradePrice:    0.5,
			TradeNotional: 100,
			OutcomeWon:    i < wins,
		})
	}
	return events
}

func TestSeverityForZ_Thresholds(t *testing.T) {
	cfg := config.DefaultMonitorConfig()
	_, warn := severityForZ(1.6, cfg)
	assert.True(t, warn)
	sev, _ := severityForZ(1.6, cfg)
	assert.Equal(t, types.SeverityWarning, sev)

	sev, crit := severityForZ(3.0, cfg)
	assert.True(t, crit)
	assert.Equal(t, types.SeverityCritical, sev)

	_, none := severityForZ(0.5, cfg)
	assert.False(t, none)
}

func TestCheckHealth_SampleSizeWarning(t *testing.T) {
	cfg := config.DefaultMonitorConfig()
	source := func() []types.ContrarianEvent { return eventsWithWinRate(5, 0.5) }
	eng := research.NewEngine(defaultResearchConfig(), nil, source)

	strategy := StartMonitoring("s1", "test strategy", types.DefaultAnalysisConfig(), 0, eng)
	updated, alerts := CheckHealth(strategy, cfg, eng, nil)

	var sawSampleSize bool
	for _, a := range alerts {
		if a.AlertType == types.AlertSampleSize {
			sawSampleSize = true
		}
	}
	assert.True(t, sawSampleSize)
	assert.False(t, updated.IsHealthy)
}

func TestCheckHealth_HealthyWhenNoDeviation(t *testing.T) {
	cfg := config.DefaultMonitorConfig()
	source := func() []types.ContrarianEvent { return eventsWithWinRate(100, 0.5) }
	eng := research.NewEngine(defaultResearchConfig(), nil, source)

	strategy := StartMonitoring("s2", "stable strategy", types.DefaultAnalysisConfig(), 0, eng)
	updated, alerts := CheckHealth(strategy, cfg, eng, nil)

	assert.Empty(t, alerts)
	assert.True(t, updated.IsHealthy)
}

func defaultResearchConfig() config.ResearchConfig {
	return config.DefaultResearchConfig()
}
