package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/types"
)

// eventsRepo implements persistence.ContrarianEventsRepo.
type eventsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewContrarianEventsRepo creates a PostgreSQL-backed contrarian_events repo.
func NewContrarianEventsRepo(db *sqlx.DB, timeout time.Duration) persistence.ContrarianEventsRepo {
	return &eventsRepo{db: db, timeout: timeout}
}

const insertEventQuery = `
	INSERT INTO contrarian_events
	(id, condition_id, token_id, trade_timestamp, minutes_before_close, trade_side, trade_price,
	 trade_size, trade_notional, taker_address, size_percentile, size_z_score, is_tail_trade,
	 is_price_contrarian, price_trend_30m, is_against_trend, ofi_30m, is_against_ofi, is_contrarian,
	 book_imbalance, thin_opposite_ratio, spread_bps, is_asymmetric_book, wallet_age_days,
	 wallet_trade_count, is_new_wallet, traded_outcome, outcome_won, drift_30m, drift_60m)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
	        $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
	ON CONFLICT (condition_id, token_id, trade_timestamp) DO NOTHING`

// InsertBatch is idempotent on UNIQUE(condition_id, token_id,
// trade_timestamp): re-running a backfill over an already-recorded
// window inserts zero new rows rather than erroring or duplicating
// (testable property #12).
func (r *eventsRepo) InsertBatch(ctx context.Context, events []types.ContrarianEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(events)/100+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEventQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		result, err := stmt.ExecContext(ctx,
			e.ID, e.ConditionID, string(e.TokenID), e.TradeTimestampMS, e.MinutesBeforeClose,
			string(e.TradeSide), e.TradePrice, e.TradeSize, e.TradeNotional, e.TakerAddress,
			e.SizePercentile, e.SizeZScore, e.IsTailTrade, e.IsPriceContrarian, e.PriceTrend30m,
			e.IsAgainstTrend, e.OFI30m, e.IsAgainstOFI, e.IsContrarian, e.BookImbalance,
			e.ThinOppositeRatio, e.SpreadBps, e.IsAsymmetricBook, e.WalletAgeDays,
			e.WalletTradeCount, e.IsNewWallet, string(e.TradedOutcome), e.OutcomeWon,
			e.Drift30m, e.Drift60m)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert contrarian event: %w", err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	return inserted, tx.Commit()
}

func (r *eventsRepo) ListSince(ctx context.Context, since time.Time) ([]types.ContrarianEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sinceMS := since.UnixMilli()
	query := `
		SELECT id, condition_id, token_id, trade_timestamp, minutes_before_close, trade_side,
		       trade_price, trade_size, trade_notional, taker_address, size_percentile, size_z_score,
		       is_tail_trade, is_price_contrarian, price_trend_30m, is_against_trend, ofi_30m,
		       is_against_ofi, is_contrarian, book_imbalance, thin_opposite_ratio, spread_bps,
		       is_asymmetric_book, wallet_age_days, wallet_trade_count, is_new_wallet, traded_outcome,
		       outcome_won, drift_30m, drift_60m
		FROM contrarian_events
		WHERE trade_timestamp >= $1
		ORDER BY trade_timestamp ASC`

	rows, err := r.db.QueryxContext(ctx, query, sinceMS)
	if err != nil {
		return nil, fmt.Errorf("failed to query contrarian events: %w", err)
	}
	defer rows.Close()

	var events []types.ContrarianEvent
	for rows.Next() {
		e, err := scanContrarianEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contrarian events: %w", err)
	}
	return events, nil
}

func scanContrarianEvent(rows *sqlx.Rows) (types.ContrarianEvent, error) {
	var e types.ContrarianEvent
	var tokenID, tradeSide, tradedOutcome string
	err := rows.Scan(
		&e.ID, &e.ConditionID, &tokenID, &e.TradeTimestampMS, &e.MinutesBeforeClose, &tradeSide,
		&e.TradePrice, &e.TradeSize, &e.TradeNotional, &e.TakerAddress, &e.SizePercentile, &e.SizeZScore,
		&e.IsTailTrade, &e.IsPriceContrarian, &e.PriceTrend30m, &e.IsAgainstTrend, &e.OFI30m,
		&e.IsAgainstOFI, &e.IsContrarian, &e.BookImbalance, &e.ThinOppositeRatio, &e.SpreadBps,
		&e.IsAsymmetricBook, &e.WalletAgeDays, &e.WalletTradeCount, &e.IsNewWallet, &tradedOutcome,
		&e.OutcomeWon, &e.Drift30m, &e.Drift60m)
	if err != nil {
		return types.ContrarianEvent{}, fmt.Errorf("failed to scan contrarian event: %w", err)
	}
	e.TokenID = types.TokenID(tokenID)
	e.TradeSide = types.Side(tradeSide)
	e.TradedOutcome = types.WinningOutcome(tradedOutcome)
	return e, nil
}

func (r *eventsRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.QueryRowxContext(ctx, `SELECT COUNT(*) FROM contrarian_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contrarian events: %w", err)
	}
	return count, nil
}
