package market

import (
	"math"

	"market-quoter-go/eventloop"
	"market-quoter-go/events"
)

// fullySelfOwned 过滤后小于该值的档位视为完全是自己的挂单，整档丢弃。
const fullySelfOwned = 0.001

// SentQuote 报价器已发出、仍在场上的一笔报价的价量视图。
type SentQuote struct {
	Price float64
	Size  float64
}

// QuoteSupplier 只读快照接口：某方向上当前已发出的报价列表。
type QuoteSupplier interface {
	SentQuotes(s Side) []SentQuote
}

// DataBroker 原始深度行情来源。
type DataBroker interface {
	CurrentBook() *Market
	OnBookChanged(func())
}

// TickSource 提供交易对最小价格步进。
type TickSource interface {
	MinTickIncrement() float64
}

// Filtration 从原始行情中剔除自己的挂单，让下游只对外部流动性做出反应。
type Filtration struct {
	details TickSource
	quotes  QuoteSupplier
	broker  DataBroker
	sched   *eventloop.Scheduler

	latest *Market

	// Changed 过滤后行情变化事件。
	Changed events.Evt[*Market]
}

func NewFiltration(loop *eventloop.Loop, details TickSource, quotes QuoteSupplier, broker DataBroker) *Filtration {
	f := &Filtration{
		details: details,
		quotes:  quotes,
		broker:  broker,
	}
	f.sched = eventloop.NewScheduler(loop, f.filterFullMarket)
	broker.OnBookChanged(f.sched.Schedule)
	return f
}

// Latest 最近一次过滤结果；无法报价时为 nil。
func (f *Filtration) Latest() *Market { return f.latest }

// OnChange 订阅过滤后行情变化。
func (f *Filtration) OnChange(h func()) {
	f.Changed.On(func(*Market) { h() })
}

func (f *Filtration) setLatest(m *Market) {
	if f.latest == nil && m == nil {
		return
	}
	f.latest = m
	f.Changed.Trigger(m)
}

func (f *Filtration) filterFullMarket() {
	mkt := f.broker.CurrentBook()
	if mkt == nil || len(mkt.Bids) < 1 || len(mkt.Asks) < 1 {
		f.setLatest(nil)
		return
	}

	bids := f.filterSide(mkt.Bids, Bid)
	asks := f.filterSide(mkt.Asks, Ask)
	f.setLatest(&Market{Bids: bids, Asks: asks, Time: mkt.Time})
}

// filterSide 深拷贝单边档位，把落在已发报价一个 tick 内的档位量
// 减去报价量，剔除剩余量过小的档位。
func (f *Filtration) filterSide(levels []MarketSide, s Side) []MarketSide {
	tick := f.details.MinTickIncrement()
	sent := f.quotes.SentQuotes(s)

	copied := make([]MarketSide, len(levels))
	copy(copied, levels)

	for _, q := range sent {
		for i := range copied {
			if math.Abs(q.Price-copied[i].Price) < tick {
				copied[i].Size -= q.Size
			}
		}
	}

	out := copied[:0]
	for _, m := range copied {
		if m.Size > fullySelfOwned {
			out = append(out, m)
		}
	}
	return out
}
