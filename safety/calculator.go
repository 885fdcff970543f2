// Package safety 统计近期成交频率并维护 ping/pong 参考价。
package safety

import (
	"context"
	"time"

	"market-quoter-go/eventloop"
	"market-quoter-go/events"
	"market-quoter-go/market"
)

// window 成交频率的滚动统计窗口。
const window = time.Minute

// Values 安全快照。BuyPing/SellPong 为 0 表示暂无参考价。
type Values struct {
	Buy      float64 // 窗口内买入成交笔数
	Sell     float64 // 窗口内卖出成交笔数
	BuyPing  float64 // 未被对冲的买入加权均价
	SellPong float64 // 未被对冲的卖出加权均价
}

// TradeSource 成交事件来源。
type TradeSource interface {
	OnTrade(func(market.Trade))
}

type fill struct {
	price float64
	size  float64
	time  time.Time
}

// Calculator 订阅成交流，维护滚动计数和双向未对冲均价。
type Calculator struct {
	clock eventloop.Clock

	trades []market.Trade
	buys   []fill
	sells  []fill

	latest *Values

	NewValue events.Evt[Values]
}

func NewCalculator(clock eventloop.Clock, trades TradeSource) *Calculator {
	c := &Calculator{clock: clock}
	trades.OnTrade(c.onTrade)
	return c
}

// Latest 最近的安全快照；尚无成交数据时 ok 为 false。
func (c *Calculator) Latest() (Values, bool) {
	if c.latest == nil {
		return Values{}, false
	}
	return *c.latest, true
}

func (c *Calculator) OnChange(h func()) {
	c.NewValue.On(func(Values) { h() })
}

// Start 启动周期衰减，让过窗的成交从计数中退出。
func (c *Calculator) Start(ctx context.Context, loop *eventloop.Loop) {
	loop.Every(ctx, time.Second, c.sweep)
}

// Prime 用空快照初始化，使引擎在首笔成交前也能报价。
func (c *Calculator) Prime() {
	c.recompute()
}

func (c *Calculator) onTrade(t market.Trade) {
	c.trades = append(c.trades, t)

	f := fill{price: t.Price, size: t.Size, time: t.Time}
	switch t.Side {
	case market.Bid:
		f.size = offset(&c.sells, f.size)
		if f.size > 0 {
			c.buys = append(c.buys, f)
		}
	case market.Ask:
		f.size = offset(&c.buys, f.size)
		if f.size > 0 {
			c.sells = append(c.sells, f)
		}
	}
	c.recompute()
}

// offset 用新成交量冲销对侧未对冲名单（先进先出），返回剩余量。
func offset(fills *[]fill, size float64) float64 {
	fs := *fills
	for len(fs) > 0 && size > 0 {
		if fs[0].size > size {
			fs[0].size -= size
			size = 0
			break
		}
		size -= fs[0].size
		fs = fs[1:]
	}
	*fills = fs
	return size
}

func (c *Calculator) sweep() {
	cutoff := c.clock.Now().Add(-window)
	kept := c.trades[:0]
	for _, t := range c.trades {
		if t.Time.After(cutoff) {
			kept = append(kept, t)
		}
	}
	changed := len(kept) != len(c.trades)
	c.trades = kept
	if changed {
		c.recompute()
	}
}

func (c *Calculator) recompute() {
	cutoff := c.clock.Now().Add(-window)
	v := Values{}
	for _, t := range c.trades {
		if !t.Time.After(cutoff) {
			continue
		}
		if t.Side == market.Bid {
			v.Buy++
		} else {
			v.Sell++
		}
	}
	v.BuyPing = weightedPrice(c.buys)
	v.SellPong = weightedPrice(c.sells)

	if c.latest != nil && *c.latest == v {
		return
	}
	c.latest = &v
	c.NewValue.Trigger(v)
}

func weightedPrice(fills []fill) float64 {
	var notional, size float64
	for _, f := range fills {
		notional += f.price * f.size
		size += f.size
	}
	if size == 0 {
		return 0
	}
	return notional / size
}
