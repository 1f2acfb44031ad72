package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/types"
)

// historicalTradesRepo implements persistence.HistoricalTradesRepo.
type historicalTradesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewHistoricalTradesRepo creates a PostgreSQL-backed historical_trades repo.
func NewHistoricalTradesRepo(db *sqlx.DB, timeout time.Duration) persistence.HistoricalTradesRepo {
	return &historicalTradesRepo{db: db, timeout: timeout}
}

// InsertBatch inserts trades under the backfill's natural key
// UNIQUE(condition_id, trade_id), skipping rows already recorded from a
// prior backfill pass rather than failing the whole batch.
func (r *historicalTradesRepo) InsertBatch(ctx context.Context, conditionID string, trades []types.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(trades)/100+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO historical_trades
		(condition_id, token_id, trade_id, trade_timestamp, taker_address, maker_address, side, price, size, notional, outcome, transaction_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (condition_id, trade_id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, trade := range trades {
		result, err := stmt.ExecContext(ctx,
			conditionID, string(trade.TokenID), trade.TradeID, trade.TimestampMS,
			trade.TakerAddress, "", string(trade.Side), trade.Price, trade.Size,
			trade.Notional(), "", trade.TxHash)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				continue
			}
			return inserted, fmt.Errorf("failed to insert historical trade: %w", err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	return inserted, tx.Commit()
}

func (r *historicalTradesRepo) ListByCondition(ctx context.Context, conditionID string, tokenID types.TokenID) ([]types.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT trade_id, token_id, trade_timestamp, taker_address, side, price, size, transaction_hash
		FROM historical_trades
		WHERE condition_id = $1 AND token_id = $2
		ORDER BY trade_timestamp ASC`

	rows, err := r.db.QueryxContext(ctx, query, conditionID, string(tokenID))
	if err != nil {
		return nil, fmt.Errorf("failed to query historical trades: %w", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var t types.Trade
		var tokenIDStr, sideStr string
		if err := rows.Scan(&t.TradeID, &tokenIDStr, &t.TimestampMS, &t.TakerAddress, &sideStr, &t.Price, &t.Size, &t.TxHash); err != nil {
			return nil, fmt.Errorf("failed to scan historical trade: %w", err)
		}
		t.TokenID = types.TokenID(tokenIDStr)
		t.Side = types.Side(sideStr)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating historical trades: %w", err)
	}
	return trades, nil
}
