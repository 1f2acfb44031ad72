// Package persistence declares the warehouse repository contracts
// (§6 "Warehouse schema") independent of any storage engine, the way
// the teacher's internal/persistence package separates TradesRepo/
// RegimeRepo/PremoveRepo interfaces from their postgres implementations.
package persistence

import (
	"context"
	"time"

	"github.com/sawpanic/marketintel/internal/types"
)

// TimeRange bounds a warehouse query.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// ResolvedMarketsRepo persists markets whose outcome has settled.
type ResolvedMarketsRepo interface {
	Upsert(ctx context.Context, market types.ResolvedMarket) error
	ListResolvedSince(ctx context.Context, since time.Time) ([]types.ResolvedMarket, error)
	GetByConditionID(ctx context.Context, conditionID string) (*types.ResolvedMarket, error)
}

// HistoricalTradesRepo persists the raw trade tape a backfill walks.
type HistoricalTradesRepo interface {
	InsertBatch(ctx context.Context, conditionID string, trades []types.Trade) (inserted int, err error)
	ListByCondition(ctx context.Context, conditionID string, tokenID types.TokenID) ([]types.Trade, error)
}

// ContrarianEventsRepo persists the enriched events the research engine
// reads back via an EventSource closure.
type ContrarianEventsRepo interface {
	InsertBatch(ctx context.Context, events []types.ContrarianEvent) (inserted int, err error)
	ListSince(ctx context.Context, since time.Time) ([]types.ContrarianEvent, error)
	Count(ctx context.Context) (int64, error)
}

// BackfillJobsRepo tracks backfill run state across process restarts.
type BackfillJobsRepo interface {
	Create(ctx context.Context, job types.BackfillJob) error
	Update(ctx context.Context, job types.BackfillJob) error
	Latest(ctx context.Context) (*types.BackfillJob, error)
	GetByID(ctx context.Context, id string) (*types.BackfillJob, error)
	// FailStaleRunning marks any job still "running" as "failed" with
	// errMessage — called once at process start so a job never reads
	// as running across a restart (§7 JobFailure policy).
	FailStaleRunning(ctx context.Context, errMessage string) error
}

// OptimizationJobsRepo tracks grid-search run state.
type OptimizationJobsRepo interface {
	Create(ctx context.Context, job types.OptimizationJob) error
	Update(ctx context.Context, job types.OptimizationJob) error
	GetByID(ctx context.Context, id string) (*types.OptimizationJob, error)
	Latest(ctx context.Context) (*types.OptimizationJob, error)
	FailStaleRunning(ctx context.Context, errMessage string) error
}

// OptimizationResultsRepo persists one row per evaluated grid-search
// configuration, keyed by (job_id, config_hash) so a re-run of the same
// configuration within a job updates in place rather than duplicating.
type OptimizationResultsRepo interface {
	Upsert(ctx context.Context, jobID string, result types.OptimizationResult) error
	UpsertBatch(ctx context.Context, jobID string, results []types.OptimizationResult) error
	ListByJob(ctx context.Context, jobID string) ([]types.OptimizationResult, error)
	ListParetoOptimal(ctx context.Context, jobID string) ([]types.OptimizationResult, error)
}

// MonitoredStrategiesRepo persists strategy baselines and current state.
type MonitoredStrategiesRepo interface {
	Upsert(ctx context.Context, strategy types.MonitoredStrategy) error
	GetByID(ctx context.Context, strategyID string) (*types.MonitoredStrategy, error)
	ListActive(ctx context.Context) ([]types.MonitoredStrategy, error)
	ListRanked(ctx context.Context, sortBy string, limit int, significantOnly bool) ([]types.MonitoredStrategy, error)
}

// DriftAlertsRepo persists alerts emitted by the strategy monitor.
type DriftAlertsRepo interface {
	Insert(ctx context.Context, alert types.DriftAlert) error
	Acknowledge(ctx context.Context, alertID string, by string) error
	List(ctx context.Context, severity types.AlertSeverity, unacknowledgedOnly bool, limit int) ([]types.DriftAlert, error)
}

// Repository aggregates all warehouse repositories, mirroring the
// teacher's persistence.Repository grouping.
type Repository struct {
	Markets      ResolvedMarketsRepo
	Trades       HistoricalTradesRepo
	Events       ContrarianEventsRepo
	BackfillJobs BackfillJobsRepo
	OptimJobs    OptimizationJobsRepo
	OptimResults OptimizationResultsRepo
	Strategies   MonitoredStrategiesRepo
	Alerts       DriftAlertsRepo
}

// HealthCheck mirrors the teacher's connection-pool health snapshot.
type HealthCheck struct {
	Healthy        bool
	Errors         []string
	ConnectionPool map[string]int
	LastCheck      time.Time
	ResponseTimeMS int64
}

// RepositoryHealth exposes liveness/stats for the HTTP health endpoint.
type RepositoryHealth interface {
	Health(ctx context.Context) HealthCheck
	Ping(ctx context.Context) error
	Stats(ctx context.Context) map[string]interface{}
}
