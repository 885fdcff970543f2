package market

import (
	"sort"
	"time"
)

// OrderBook 维护 价格->数量 映射，由增量行情驱动。
// 只在事件循环线程上被修改，不加锁。
type OrderBook struct {
	bids map[float64]float64
	asks map[float64]float64
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: make(map[float64]float64),
		asks: make(map[float64]float64),
	}
}

// ApplyDelta 应用增量更新，size 为 0 表示删除该档。
func (ob *OrderBook) ApplyDelta(bidDelta, askDelta map[float64]float64) {
	for p, q := range bidDelta {
		if q == 0 {
			delete(ob.bids, p)
		} else {
			ob.bids[p] = q
		}
	}
	for p, q := range askDelta {
		if q == 0 {
			delete(ob.asks, p)
		} else {
			ob.asks[p] = q
		}
	}
}

// Snapshot 导出排好序的深度快照，最优价在前，单边最多 MaxDepth 档。
func (ob *OrderBook) Snapshot(t time.Time) *Market {
	bids := make([]MarketSide, 0, len(ob.bids))
	for p, q := range ob.bids {
		bids = append(bids, MarketSide{Price: p, Size: q})
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })

	asks := make([]MarketSide, 0, len(ob.asks))
	for p, q := range ob.asks {
		asks = append(asks, MarketSide{Price: p, Size: q})
	}
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })

	if len(bids) > MaxDepth {
		bids = bids[:MaxDepth]
	}
	if len(asks) > MaxDepth {
		asks = asks[:MaxDepth]
	}
	return &Market{Bids: bids, Asks: asks, Time: t}
}
