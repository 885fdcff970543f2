package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBookSnapshotSorted(t *testing.T) {
	ob := NewOrderBook()
	ob.ApplyDelta(
		map[float64]float64{99: 1, 98: 2, 99.5: 0.5},
		map[float64]float64{101: 1, 100.5: 0.3, 102: 2},
	)

	m := ob.Snapshot(time.Unix(42, 0))
	require.Len(t, m.Bids, 3)
	require.Len(t, m.Asks, 3)
	assert.Equal(t, 99.5, m.Bids[0].Price, "best bid first")
	assert.Equal(t, 100.5, m.Asks[0].Price, "best ask first")
	assert.Equal(t, time.Unix(42, 0), m.Time)
}

func TestOrderBookDeltaRemovesLevel(t *testing.T) {
	ob := NewOrderBook()
	ob.ApplyDelta(map[float64]float64{99: 1, 98: 2}, map[float64]float64{101: 1})
	ob.ApplyDelta(map[float64]float64{99: 0}, nil)

	m := ob.Snapshot(time.Now())
	require.Len(t, m.Bids, 1)
	assert.Equal(t, 98.0, m.Bids[0].Price)
}

func TestOrderBookSnapshotDepthCapped(t *testing.T) {
	ob := NewOrderBook()
	bids := map[float64]float64{}
	for i := 0; i < MaxDepth+10; i++ {
		bids[100-float64(i)*0.01] = 1
	}
	ob.ApplyDelta(bids, map[float64]float64{101: 1})

	m := ob.Snapshot(time.Now())
	assert.Len(t, m.Bids, MaxDepth)
}
