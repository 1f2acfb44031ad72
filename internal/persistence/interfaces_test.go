package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRange_FromBeforeTo(t *testing.T) {
	tr := TimeRange{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, tr.To.After(tr.From))
}

func TestHealthCheck_DisabledShape(t *testing.T) {
	hc := HealthCheck{
		Healthy:        true,
		Errors:         []string{"warehouse persistence disabled"},
		ConnectionPool: map[string]int{"status": 0},
		LastCheck:      time.Now(),
	}
	assert.True(t, hc.Healthy)
	assert.Contains(t, hc.Errors[0], "disabled")
}
