// Package db manages the warehouse PostgreSQL connection pool and wires
// the concrete repository implementations, following the teacher's
// internal/infrastructure/db.Manager pattern: a DSN-enabled/disabled
// toggle. When no warehouse is configured, Repository returns nil and
// callers degrade on the nil repository (§7 StorageUnavailable).
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/persistence/postgres"
)

// Config holds warehouse connection settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
	Enabled         bool
}

// DefaultConfig mirrors the teacher's connection-pool defaults.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    30 * time.Second,
		Enabled:         false,
	}
}

// Manager owns the sqlx handle and the assembled repository collection.
type Manager struct {
	db     *sqlx.DB
	config Config
	repos  *persistence.Repository
	health *healthChecker
}

// NewManager opens a connection (if enabled) and wires one repository
// per warehouse table named in §6.
func NewManager(config Config) (*Manager, error) {
	if !config.Enabled {
		return &Manager{config: config, health: &healthChecker{enabled: false}}, nil
	}
	if config.DSN == "" {
		return nil, fmt.Errorf("warehouse DSN is required when enabled")
	}

	sdb, err := sqlx.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	sdb.SetMaxOpenConns(config.MaxOpenConns)
	sdb.SetMaxIdleConns(config.MaxIdleConns)
	sdb.SetConnMaxLifetime(config.ConnMaxLifetime)
	sdb.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sdb.PingContext(ctx); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	repos := &persistence.Repository{
		Markets:      postgres.NewResolvedMarketsRepo(sdb, config.QueryTimeout),
		Trades:       postgres.NewHistoricalTradesRepo(sdb, config.QueryTimeout),
		Events:       postgres.NewContrarianEventsRepo(sdb, config.QueryTimeout),
		BackfillJobs: postgres.NewBackfillJobsRepo(sdb, config.QueryTimeout),
		OptimJobs:    postgres.NewOptimizationJobsRepo(sdb, config.QueryTimeout),
		OptimResults: postgres.NewOptimizationResultsRepo(sdb, config.QueryTimeout),
		Strategies:   postgres.NewMonitoredStrategiesRepo(sdb, config.QueryTimeout),
		Alerts:       postgres.NewDriftAlertsRepo(sdb, config.QueryTimeout),
	}

	return &Manager{
		db:     sdb,
		config: config,
		repos:  repos,
		health: &healthChecker{enabled: true, db: sdb, timeout: config.QueryTimeout},
	}, nil
}

// Repository returns the assembled warehouse repositories, or nil when
// no warehouse is configured.
func (m *Manager) Repository() *persistence.Repository { return m.repos }

// Health returns the repository-layer health monitor.
func (m *Manager) Health() persistence.RepositoryHealth { return m.health }

// DB exposes the raw handle for migrations.
func (m *Manager) DB() *sqlx.DB { return m.db }

// IsEnabled reports whether a warehouse connection is active.
func (m *Manager) IsEnabled() bool { return m.config.Enabled && m.db != nil }

// Close releases the connection pool.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

type healthChecker struct {
	enabled bool
	db      *sqlx.DB
	timeout time.Duration
}

func (h *healthChecker) Health(ctx context.Context) persistence.HealthCheck {
	if !h.enabled {
		return persistence.HealthCheck{
			Healthy:        true,
			Errors:         []string{"warehouse persistence disabled"},
			ConnectionPool: map[string]int{"status": 0},
			LastCheck:      time.Now(),
		}
	}

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var errs []string
	healthy := true
	if err := h.db.PingContext(pingCtx); err != nil {
		errs = append(errs, fmt.Sprintf("ping failed: %v", err))
		healthy = false
	}

	stats := h.db.Stats()
	return persistence.HealthCheck{
		Healthy: healthy,
		Errors:  errs,
		ConnectionPool: map[string]int{
			"max_open": stats.MaxOpenConnections,
			"open":     stats.OpenConnections,
			"in_use":   stats.InUse,
			"idle":     stats.Idle,
		},
		LastCheck:      time.Now(),
		ResponseTimeMS: time.Since(start).Milliseconds(),
	}
}

func (h *healthChecker) Ping(ctx context.Context) error {
	if !h.enabled {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.db.PingContext(pingCtx)
}

func (h *healthChecker) Stats(ctx context.Context) map[string]interface{} {
	if !h.enabled {
		return map[string]interface{}{"enabled": false}
	}
	stats := h.db.Stats()
	return map[string]interface{}{
		"enabled":          true,
		"max_open":         stats.MaxOpenConnections,
		"open":             stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration_ms": stats.WaitDuration.Milliseconds(),
	}
}
