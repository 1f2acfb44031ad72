package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/types"
)

// strategiesRepo implements persistence.MonitoredStrategiesRepo.
type strategiesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewMonitoredStrategiesRepo creates a PostgreSQL-backed
// monitored_strategies repo.
func NewMonitoredStrategiesRepo(db *sqlx.DB, timeout time.Duration) persistence.MonitoredStrategiesRepo {
	return &strategiesRepo{db: db, timeout: timeout}
}

func (r *strategiesRepo) Upsert(ctx context.Context, strategy types.MonitoredStrategy) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	configJSON, err := json.Marshal(strategy.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal strategy config: %w", err)
	}
	baselineJSON, err := json.Marshal(strategy.BaselineMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal baseline metrics: %w", err)
	}
	currentJSON, err := json.Marshal(strategy.CurrentMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal current metrics: %w", err)
	}

	query := `
		INSERT INTO monitored_strategies
		(strategy_id, name, description, config, baseline_metrics, baseline_date, current_metrics,
		 recommended_kelly, is_active, is_healthy, last_check_at, check_interval_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (strategy_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			current_metrics = EXCLUDED.current_metrics,
			recommended_kelly = EXCLUDED.recommended_kelly,
			is_active = EXCLUDED.is_active,
			is_healthy = EXCLUDED.is_healthy,
			last_check_at = EXCLUDED.last_check_at,
			check_interval_minutes = EXCLUDED.check_interval_minutes`

	_, err = r.db.ExecContext(ctx, query,
		strategy.StrategyID, strategy.Name, strategy.Description, configJSON, baselineJSON,
		strategy.BaselineDate, currentJSON, strategy.RecommendedKelly, strategy.IsActive,
		strategy.IsHealthy, strategy.LastCheckAt, int(strategy.CheckInterval.Minutes()))
	if err != nil {
		return fmt.Errorf("failed to upsert monitored strategy: %w", err)
	}
	return nil
}

func (r *strategiesRepo) GetByID(ctx context.Context, strategyID string) (*types.MonitoredStrategy, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT strategy_id, name, description, config, baseline_metrics, baseline_date, current_metrics,
		       recommended_kelly, is_active, is_healthy, last_check_at, check_interval_minutes
		FROM monitored_strategies
		WHERE strategy_id = $1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, strategyID))
}

func (r *strategiesRepo) ListActive(ctx context.Context) ([]types.MonitoredStrategy, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT strategy_id, name, description, config, baseline_metrics, baseline_date, current_metrics,
		       recommended_kelly, is_active, is_healthy, last_check_at, check_interval_minutes
		FROM monitored_strategies
		WHERE is_active = true
		ORDER BY last_check_at ASC`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active strategies: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListRanked orders strategies by sortBy (roi|win_rate|sharpe_ratio,
// falling back to roi) for the /strategies endpoint. significantOnly
// keeps only strategies whose is_healthy flag is set; the table has no
// significance column.
func (r *strategiesRepo) ListRanked(ctx context.Context, sortBy string, limit int, significantOnly bool) ([]types.MonitoredStrategy, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	orderExpr := "(current_metrics->>'ROI')::float8 DESC"
	switch sortBy {
	case "win_rate":
		orderExpr = "(current_metrics->>'WinRate')::float8 DESC"
	case "sharpe_ratio":
		orderExpr = "(current_metrics->>'SharpeRatio')::float8 DESC"
	}

	query := fmt.Sprintf(`
		SELECT strategy_id, name, description, config, baseline_metrics, baseline_date, current_metrics,
		       recommended_kelly, is_active, is_healthy, last_check_at, check_interval_minutes
		FROM monitored_strategies
		WHERE ($1 = false OR is_healthy = true)
		ORDER BY %s
		LIMIT $2`, orderExpr)

	rows, err := r.db.QueryxContext(ctx, query, significantOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranked strategies: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *strategiesRepo) scanMany(rows *sqlx.Rows) ([]types.MonitoredStrategy, error) {
	var strategies []types.MonitoredStrategy
	for rows.Next() {
		s, err := scanStrategyFromRows(rows)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monitored strategies: %w", err)
	}
	return strategies, nil
}

func (r *strategiesRepo) scanOne(row *sqlx.Row) (*types.MonitoredStrategy, error) {
	var s types.MonitoredStrategy
	var configJSON, baselineJSON, currentJSON []byte
	var checkIntervalMinutes int
	err := row.Scan(&s.StrategyID, &s.Name, &s.Description, &configJSON, &baselineJSON, &s.BaselineDate,
		&currentJSON, &s.RecommendedKelly, &s.IsActive, &s.IsHealthy, &s.LastCheckAt, &checkIntervalMinutes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan monitored strategy: %w", err)
	}
	if err := unmarshalStrategyJSON(&s, configJSON, baselineJSON, currentJSON); err != nil {
		return nil, err
	}
	s.CheckInterval = time.Duration(checkIntervalMinutes) * time.Minute
	return &s, nil
}

func scanStrategyFromRows(rows *sqlx.Rows) (types.MonitoredStrategy, error) {
	var s types.MonitoredStrategy
	var configJSON, baselineJSON, currentJSON []byte
	var checkIntervalMinutes int
	err := rows.Scan(&s.StrategyID, &s.Name, &s.Description, &configJSON, &baselineJSON, &s.BaselineDate,
		&currentJSON, &s.RecommendedKelly, &s.IsActive, &s.IsHealthy, &s.LastCheckAt, &checkIntervalMinutes)
	if err != nil {
		return s, fmt.Errorf("failed to scan monitored strategy: %w", err)
	}
	if err := unmarshalStrategyJSON(&s, configJSON, baselineJSON, currentJSON); err != nil {
		return s, err
	}
	s.CheckInterval = time.Duration(checkIntervalMinutes) * time.Minute
	return s, nil
}

func unmarshalStrategyJSON(s *types.MonitoredStrategy, configJSON, baselineJSON, currentJSON []byte) error {
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &s.Config); err != nil {
			return fmt.Errorf("failed to unmarshal strategy config: %w", err)
		}
	}
	if len(baselineJSON) > 0 {
		if err := json.Unmarshal(baselineJSON, &s.BaselineMetrics); err != nil {
			return fmt.Errorf("failed to unmarshal baseline metrics: %w", err)
		}
	}
	if len(currentJSON) > 0 {
		if err := json.Unmarshal(currentJSON, &s.CurrentMetrics); err != nil {
			return fmt.Errorf("failed to unmarshal current metrics: %w", err)
		}
	}
	return nil
}
