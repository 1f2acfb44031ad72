package monitor

import (
	"time"

	"github.com/sawpanic/marketintel/internal/types"
)

// Acknowledge marks an alert acknowledged by the given actor. Alerts
// are append-only (§4.E): acknowledgement mutates only the
// acknowledgement fields, never the observed/expected/severity record.
func Acknowledge(alert types.DriftAlert, by string) types.DriftAlert {
	now := time.Now().UTC()
	alert.Acknowledged = true
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = by
	return alert
}
