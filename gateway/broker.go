package gateway

import (
	"market-quoter-go/events"
	"market-quoter-go/market"
)

// MarketDataBroker 保存最新的原始深度快照并对外通知。
// SetBook 只应从事件循环线程调用；网关 goroutine 经 loop.Post 投递。
type MarketDataBroker struct {
	book *market.Market

	BookChanged events.Signal
}

func NewMarketDataBroker() *MarketDataBroker {
	return &MarketDataBroker{}
}

// CurrentBook 当前原始行情；尚未收到时为 nil。
func (b *MarketDataBroker) CurrentBook() *market.Market { return b.book }

func (b *MarketDataBroker) OnBookChanged(h func()) {
	b.BookChanged.On(h)
}

// SetBook 整体替换行情快照。
func (b *MarketDataBroker) SetBook(m *market.Market) {
	b.book = m
	b.BookChanged.Trigger()
}
