package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/marketintel/internal/persistence"
	"github.com/sawpanic/marketintel/internal/types"
)

// alertsRepo implements persistence.DriftAlertsRepo.
type alertsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewDriftAlertsRepo creates a PostgreSQL-backed drift_alerts repo.
func NewDriftAlertsRepo(db *sqlx.DB, timeout time.Duration) persistence.DriftAlertsRepo {
	return &alertsRepo{db: db, timeout: timeout}
}

// Insert is append-only: alerts are never mutated except by Acknowledge.
func (r *alertsRepo) Insert(ctx context.Context, alert types.DriftAlert) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO drift_alerts
		(id, strategy_id, alert_type, metric, expected_value, observed_value, deviation_sigma,
		 severity, message, recommendation, acknowledged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.StrategyID, alert.AlertType, alert.Metric, alert.Expected, alert.Observed,
		alert.DeviationSigma, alert.Severity, alert.Message, alert.Recommendation, alert.Acknowledged,
		alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert drift alert: %w", err)
	}
	return nil
}

func (r *alertsRepo) Acknowledge(ctx context.Context, alertID string, by string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE drift_alerts SET acknowledged = true, acknowledged_at = $2, acknowledged_by = $3
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, alertID, time.Now().UTC(), by)
	if err != nil {
		return fmt.Errorf("failed to acknowledge drift alert: %w", err)
	}
	return nil
}

func (r *alertsRepo) List(ctx context.Context, severity types.AlertSeverity, unacknowledgedOnly bool, limit int) ([]types.DriftAlert, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, strategy_id, alert_type, metric, expected_value, observed_value, deviation_sigma,
		       severity, message, recommendation, acknowledged, acknowledged_at, acknowledged_by, created_at
		FROM drift_alerts
		WHERE ($1 = '' OR severity = $1) AND ($2 = false OR acknowledged = false)
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.db.QueryxContext(ctx, query, string(severity), unacknowledgedOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query drift alerts: %w", err)
	}
	defer rows.Close()

	var alerts []types.DriftAlert
	for rows.Next() {
		var a types.DriftAlert
		var alertType, severityStr string
		if err := rows.Scan(&a.ID, &a.StrategyID, &alertType, &a.Metric, &a.Expected, &a.Observed,
			&a.DeviationSigma, &severityStr, &a.Message, &a.Recommendation, &a.Acknowledged,
			&a.AcknowledgedAt, &a.AcknowledgedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan drift alert: %w", err)
		}
		a.AlertType = types.AlertType(alertType)
		a.Severity = types.AlertSeverity(severityStr)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drift alerts: %w", err)
	}
	return alerts, nil
}
