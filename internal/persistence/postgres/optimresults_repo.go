package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/types"
)

// optimResultsRepo implements persistence.OptimizationResultsRepo.
type optimResultsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewOptimizationResultsRepo creates a PostgreSQL-backed
// optimization_results repo.
func NewOptimizationResultsRepo(db *sqlx.DB, timeout time.Duration) persistence.OptimizationResultsRepo {
	return &optimResultsRepo{db: db, timeout: timeout}
}

const upsertResultQuery = `
	INSERT INTO optimization_results
	(job_id, config_hash, config, sample_size, win_rate, total_pnl, roi, profit_factor, edge_points,
	 sharpe_ratio, kelly_fraction, p_value, adjusted_p_value, ci_lower, ci_upper, is_significant,
	 is_pareto_optimal, rank_by_objective)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (job_id, config_hash) DO UPDATE SET
		sample_size = EXCLUDED.sample_size,
		win_rate = EXCLUDED.win_rate,
		total_pnl = EXCLUDED.total_pnl,
		roi = EXCLUDED.roi,
		profit_factor = EXCLUDED.profit_factor,
		edge_points = EXCLUDED.edge_points,
		sharpe_ratio = EXCLUDED.sharpe_ratio,
		kelly_fraction = EXCLUDED.kelly_fraction,
		p_value = EXCLUDED.p_value,
		adjusted_p_value = EXCLUDED.adjusted_p_value,
		ci_lower = EXCLUDED.ci_lower,
		ci_upper = EXCLUDED.ci_upper,
		is_significant = EXCLUDED.is_significant,
		is_pareto_optimal = EXCLUDED.is_pareto_optimal,
		rank_by_objective = EXCLUDED.rank_by_objective`

// Upsert writes one grid-search configuration's result, keyed by
// (job_id, config_hash) per §6 and the shared-resource upsert policy:
// re-evaluating the same configuration within a job updates the row
// rather than creating a duplicate.
func (r *optimResultsRepo) Upsert(ctx context.Context, jobID string, result types.OptimizationResult) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	configJSON, err := json.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal result config: %w", err)
	}
	rankJSON, err := json.Marshal(result.RankByObjective)
	if err != nil {
		return fmt.Errorf("failed to marshal result ranks: %w", err)
	}

	m := result.Metrics
	_, err = r.db.ExecContext(ctx, upsertResultQuery,
		jobID, result.ConfigID, configJSON, m.N, m.WinRate, m.PnL, m.ROI, m.ProfitFactor,
		m.EdgePoints, m.SharpeRatio, m.KellyFraction, m.PValue, m.AdjustedPValue, m.CILower,
		m.CIUpper, result.IsStatisticallySignificant, result.IsParetoOptimal, rankJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert optimization result: %w", err)
	}
	return nil
}

func (r *optimResultsRepo) UpsertBatch(ctx context.Context, jobID string, results []types.OptimizationResult) error {
	if len(results) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(results)/100+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertResultQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		configJSON, err := json.Marshal(result.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal result config in batch: %w", err)
		}
		rankJSON, err := json.Marshal(result.RankByObjective)
		if err != nil {
			return fmt.Errorf("failed to marshal result ranks in batch: %w", err)
		}
		m := result.Metrics
		_, err = stmt.ExecContext(ctx,
			jobID, result.ConfigID, configJSON, m.N, m.WinRate, m.PnL, m.ROI, m.ProfitFactor,
			m.EdgePoints, m.SharpeRatio, m.KellyFraction, m.PValue, m.AdjustedPValue, m.CILower,
			m.CIUpper, result.IsStatisticallySignificant, result.IsParetoOptimal, rankJSON)
		if err != nil {
			return fmt.Errorf("failed to upsert optimization result in batch: %w", err)
		}
	}

	return tx.Commit()
}

func (r *optimResultsRepo) ListByJob(ctx context.Context, jobID string) ([]types.OptimizationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT config_hash, config, sample_size, win_rate, total_pnl, roi, profit_factor, edge_points,
		       sharpe_ratio, kelly_fraction, p_value, adjusted_p_value, ci_lower, ci_upper,
		       is_significant, is_pareto_optimal, rank_by_objective
		FROM optimization_results
		WHERE job_id = $1
		ORDER BY roi DESC`

	rows, err := r.db.QueryxContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization results: %w", err)
	}
	defer rows.Close()

	return scanOptimResults(rows)
}

func (r *optimResultsRepo) ListParetoOptimal(ctx context.Context, jobID string) ([]types.OptimizationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT config_hash, config, sample_size, win_rate, total_pnl, roi, profit_factor, edge_points,
		       sharpe_ratio, kelly_fraction, p_value, adjusted_p_value, ci_lower, ci_upper,
		       is_significant, is_pareto_optimal, rank_by_objective
		FROM optimization_results
		WHERE job_id = $1 AND is_pareto_optimal = true
		ORDER BY roi DESC`

	rows, err := r.db.QueryxContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pareto-optimal results: %w", err)
	}
	defer rows.Close()

	return scanOptimResults(rows)
}

func scanOptimResults(rows *sqlx.Rows) ([]types.OptimizationResult, error) {
	var results []types.OptimizationResult
	for rows.Next() {
		var res types.OptimizationResult
		var configJSON, rankJSON []byte
		var m types.OptimizationMetrics
		err := rows.Scan(&res.ConfigID, &configJSON, &m.N, &m.WinRate, &m.PnL, &m.ROI, &m.ProfitFactor,
			&m.EdgePoints, &m.SharpeRatio, &m.KellyFraction, &m.PValue, &m.AdjustedPValue, &m.CILower,
			&m.CIUpper, &res.IsStatisticallySignificant, &res.IsParetoOptimal, &rankJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization result: %w", err)
		}
		if len(configJSON) > 0 {
			if err := json.Unmarshal(configJSON, &res.Config); err != nil {
				return nil, fmt.Errorf("failed to unmarshal result config: %w", err)
			}
		}
		if len(rankJSON) > 0 {
			if err := json.Unmarshal(rankJSON, &res.RankByObjective); err != nil {
				return nil, fmt.Errorf("failed to unmarshal result ranks: %w", err)
			}
		}
		res.Metrics = m
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating optimization results: %w", err)
	}
	return results, nil
}
