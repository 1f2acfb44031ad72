package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/types"
)

func mkTrade(ts int64, price, size float64) types.Trade {
	return types.Trade{TimestampMS: ts, Price: price, Size: size, Side: types.Buy}
}

func TestTradeWindow_EvictsOldTrades(t *testing.T) {
	w := NewTradeWindow(60)
	w.Record(mkTrade(0, 1, 1))
	w.Record(mkTrade(30*60*1000, 1, 1))
	w.Record(mkTrade(65*60*1000, 1, 1)) // evicts the first (>60min old)

	snap := w.Snapshot(65 * 60 * 1000)
	assert.Len(t, snap, 2)
}

func TestTradeWindow_CountSince(t *testing.T) {
	w := NewTradeWindow(60)
	now := int64(0)
	for i := 0; i < 5; i++ {
		w.Record(mkTrade(now, 1, 1))
		now += 10_000 // every 10s
	}
	// last minute window should include all 5
	assert.Equal(t, 5, w.CountSince(now, 60*1000))
	// last 15 seconds should include only the most recent
	assert.Equal(t, 1, w.CountSince(now, 15*1000))
}

func TestTradeWindow_Notionals(t *testing.T) {
	w := NewTradeWindow(60)
	w.Record(mkTrade(0, 2, 10))
	w.Record(mkTrade(1000, 3, 5))
	notionals := w.Notionals(1000)
	assert.Equal(t, []float64{20, 15}, notionals)
}

func TestTradeWindow_InterArrivalSeconds(t *testing.T) {
	w := NewTradeWindow(60)
	assert.Nil(t, w.InterArrivalSeconds(0))
	w.Record(mkTrade(0, 1, 1))
	assert.Nil(t, w.InterArrivalSeconds(0))
	w.Record(mkTrade(2000, 1, 1))
	gaps := w.InterArrivalSeconds(2000)
	assert.Equal(t, []float64{2}, gaps)
}
