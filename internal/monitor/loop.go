package monitor

import (
	"sync"
	"time"

	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

// AlertSink persists newly-raised alerts append-only.
type AlertSink func(alerts []types.DriftAlert)

// WinRateSeries resolves the chronological 0/1 outcome series for a
// strategy's lookback window, used by the rolling-win-rate CUSUM
// check.
type WinRateSeries func(strategy types.MonitoredStrategy) []float64

// Loop runs periodic health checks for one strategy until Stop is
// called. Stop is idempotent (§5 "stop is idempotent"): the in-flight
// check, if any, is allowed to complete before the loop exits.
type Loop struct {
	mu       sync.Mutex
	stopped  bool
	stopCh   chan struct{}
	strategy types.MonitoredStrategy
}

// NewLoop wires a Loop for the given strategy.
func NewLoop(strategy types.MonitoredStrategy) *Loop {
	return &Loop{stopCh: make(chan struct{}), strategy: strategy}
}

// Run blocks, ticking at the strategy's check interval, until Stop is
// called. Each tick recomputes health via CheckHealth and hands any
// raised alerts to sink.
func (l *Loop) Run(cfg config.MonitorConfig, eng *research.Engine, series WinRateSeries, sink AlertSink) {
	interval := l.strategy.CheckInterval
	if interval <= 0 {
		interval = time.Duration(cfg.DefaultCheckIntervalMinutes) * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.runOnce(cfg, eng, series, sink)
		}
	}
}

// CheckNow runs one health check immediately (the "also on-demand"
// clause of §4.E), independent of the ticker.
func (l *Loop) CheckNow(cfg config.MonitorConfig, eng *research.Engine, series WinRateSeries, sink AlertSink) {
	l.runOnce(cfg, eng, series, sink)
}

func (l *Loop) runOnce(cfg config.MonitorConfig, eng *research.Engine, series WinRateSeries, sink AlertSink) {
	l.mu.Lock()
	strategy := l.strategy
	l.mu.Unlock()

	outcomes := series(strategy)
	updated, alerts := CheckHealth(strategy, cfg, eng, outcomes)

	l.mu.Lock()
	l.strategy = updated
	l.mu.Unlock()

	if len(alerts) > 0 && sink != nil {
		sink(alerts)
	}
}

// Strategy returns the loop's current strategy snapshot.
func (l *Loop) Strategy() types.MonitoredStrategy {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.strategy
}

// Stop requests the loop exit after its current tick completes.
// Calling Stop twice is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.stopCh)
}
