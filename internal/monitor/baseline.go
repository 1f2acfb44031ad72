// Package monitor implements the Strategy Monitor (spec.md §4.E):
// baseline snapshotting, periodic z-score/CUSUM health checks, Kelly
// recalibration, and append-only alert persistence for deployed
// research configurations.
package monitor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/types"
)

// strategyID derives a deterministic id from a strategy's
// AnalysisConfig, the same hashing convention grid search uses for
// config identity.
func strategyID(ac types.AnalysisConfig) string {
	data, _ := json.Marshal(ac)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// StartMonitoring snapshots a baseline over the configured lookback
// and returns an active, healthy MonitoredStrategy.
func StartMonitoring(name, description string, ac types.AnalysisConfig, checkInterval time.Duration, eng *research.Engine) types.MonitoredStrategy {
	baseline := eng.PnL(ac)
	return types.MonitoredStrategy{
		StrategyID:       strategyID(ac),
		Name:             name,
		Description:      description,
		Config:           ac,
		BaselineMetrics:  baseline,
		BaselineDate:     time.Now().UTC(),
		CurrentMetrics:   baseline,
		RecommendedKelly: baseline.KellyFraction,
		IsActive:         true,
		IsHealthy:        true,
		LastCheckAt:      time.Now().UTC(),
		CheckInterval:    checkInterval,
	}
}
