package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHawkesProxy_DecaysTowardBaseline(t *testing.T) {
	h := NewHawkesProxy(0.1, 0.5, 0.1)
	h.Record(0)
	atZero := h.IntensityAt(0)
	farLater := h.IntensityAt(600_000) // 600s later
	assert.Greater(t, atZero, farLater)
	assert.InDelta(t, 0.1, farLater, 0.01)
}

func TestHawkesProxy_BurstDetection(t *testing.T) {
	h := NewHawkesProxy(0.1, 0.5, 0.05)
	now := int64(0)
	for i := 0; i < 10; i++ {
		h.Record(now)
		now += 500 // rapid-fire every 500ms
	}
	assert.True(t, h.IsBurst(now))
}

func TestHawkesProxy_NoEventsNotBurst(t *testing.T) {
	h := NewHawkesProxy(0.1, 0.5, 0.1)
	assert.False(t, h.IsBurst(0))
	assert.Equal(t, 0.1, h.IntensityAt(0))
}

func TestHawkesProxy_IntensityRatio(t *testing.T) {
	h := NewHawkesProxy(0.2, 0.5, 0.1)
	h.Record(0)
	ratio := h.IntensityRatio(0)
	assert.InDelta(t, 3.5, ratio, 0.01) // (0.2+0.5)/0.2
}
