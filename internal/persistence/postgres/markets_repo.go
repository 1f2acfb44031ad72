package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/types"
)

// marketsRepo implements persistence.ResolvedMarketsRepo.
type marketsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewResolvedMarketsRepo creates a PostgreSQL-backed resolved_markets repo.
func NewResolvedMarketsRepo(db *sqlx.DB, timeout time.Duration) persistence.ResolvedMarketsRepo {
	return &marketsRepo{db: db, timeout: timeout}
}

func (r *marketsRepo) Upsert(ctx context.Context, market types.ResolvedMarket) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO resolved_markets (condition_id, question, end_date, winning_outcome, final_yes_price, final_no_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (condition_id) DO UPDATE SET
			question = EXCLUDED.question,
			end_date = EXCLUDED.end_date,
			winning_outcome = EXCLUDED.winning_outcome,
			final_yes_price = EXCLUDED.final_yes_price,
			final_no_price = EXCLUDED.final_no_price`

	_, err := r.db.ExecContext(ctx, query,
		market.ConditionID, market.Question, market.EndDate, market.WinningOutcome,
		market.FinalYesPrice, market.FinalNoPrice)
	if err != nil {
		return fmt.Errorf("failed to upsert resolved market: %w", err)
	}
	return nil
}

func (r *marketsRepo) ListResolvedSince(ctx context.Context, since time.Time) ([]types.ResolvedMarket, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT condition_id, question, end_date, winning_outcome, final_yes_price, final_no_price
		FROM resolved_markets
		WHERE end_date >= $1 AND winning_outcome IS NOT NULL
		ORDER BY end_date DESC`

	rows, err := r.db.QueryxContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolved markets: %w", err)
	}
	defer rows.Close()

	var markets []types.ResolvedMarket
	for rows.Next() {
		var m types.ResolvedMarket
		if err := rows.Scan(&m.ConditionID, &m.Question, &m.EndDate, &m.WinningOutcome, &m.FinalYesPrice, &m.FinalNoPrice); err != nil {
			return nil, fmt.Errorf("failed to scan resolved market: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resolved markets: %w", err)
	}
	return markets, nil
}

func (r *marketsRepo) GetByConditionID(ctx context.Context, conditionID string) (*types.ResolvedMarket, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT condition_id, question, end_date, winning_outcome, final_yes_price, final_no_price
		FROM resolved_markets
		WHERE condition_id = $1`

	var m types.ResolvedMarket
	err := r.db.QueryRowxContext(ctx, query, conditionID).
		Scan(&m.ConditionID, &m.Question, &m.EndDate, &m.WinningOutcome, &m.FinalYesPrice, &m.FinalNoPrice)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resolved market: %w", err)
	}
	return &m, nil
}
