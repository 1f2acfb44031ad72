package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

func TestLoop_StopIsIdempotent(t *testing.T) {
	strategy := types.MonitoredStrategy{StrategyID: "s1", CheckInterval: time.Hour}
	l := NewLoop(strategy)

	done := make(chan struct{})
	go func() {
		l.Run(config.DefaultMonitorConfig(), nil, func(types.MonitoredStrategy) []float64 { return nil }, nil)
		close(done)
	}()

	l.Stop()
	assert.NotPanics(t, func() { l.Stop() })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after Stop")
	}
}

func TestLoop_CheckNowRunsImmediately(t *testing.T) {
	source := func() []types.ContrarianEvent { return eventsWithWinRate(100, 0.5) }
	eng := research.NewEngine(config.DefaultResearchConfig(), nil, source)
	strategy := StartMonitoring("s2", "desc", types.DefaultAnalysisConfig(), time.Hour, eng)

	l := NewLoop(strategy)
	var gotAlerts []types.DriftAlert
	l.CheckNow(config.DefaultMonitorConfig(), eng, func(types.MonitoredStrategy) []float64 { return nil }, func(a []types.DriftAlert) {
		gotAlerts = append(gotAlerts, a...)
	})

	assert.Empty(t, gotAlerts)
	assert.False(t, l.Strategy().LastCheckAt.IsZero())
}
