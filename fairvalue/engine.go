// Package fairvalue 根据过滤后的行情计算参考公允价。
package fairvalue

import (
	"time"

	"market-quoter-go/eventloop"
	"market-quoter-go/events"
	"market-quoter-go/market"
)

// FairValue 当前认定的标的参考价。
type FairValue struct {
	Price float64
	Time  time.Time
}

// MarketSource 过滤后行情来源。
type MarketSource interface {
	Latest() *market.Market
	OnChange(func())
}

// Engine 以过滤后最优买卖价的中间价作为公允价。
type Engine struct {
	clock   eventloop.Clock
	markets MarketSource

	latest *FairValue

	FairValueChanged events.Evt[*FairValue]
}

func NewEngine(clock eventloop.Clock, markets MarketSource) *Engine {
	e := &Engine{clock: clock, markets: markets}
	markets.OnChange(e.recalc)
	return e
}

// Latest 最近一次公允价；无行情时为 nil。
func (e *Engine) Latest() *FairValue { return e.latest }

func (e *Engine) OnChange(h func()) {
	e.FairValueChanged.On(func(*FairValue) { h() })
}

// LatestPrice 供均线等指标采样。
func (e *Engine) LatestPrice() (float64, bool) {
	if e.latest == nil {
		return 0, false
	}
	return e.latest.Price, true
}

func (e *Engine) recalc() {
	mkt := e.markets.Latest()
	if mkt == nil || len(mkt.Bids) < 1 || len(mkt.Asks) < 1 {
		e.setLatest(nil)
		return
	}
	mid := (mkt.Bids[0].Price + mkt.Asks[0].Price) / 2.0
	e.setLatest(&FairValue{Price: mid, Time: e.clock.Now()})
}

func (e *Engine) setLatest(fv *FairValue) {
	if e.latest == nil && fv == nil {
		return
	}
	if e.latest != nil && fv != nil && e.latest.Price == fv.Price {
		return
	}
	e.latest = fv
	e.FairValueChanged.Trigger(fv)
}
