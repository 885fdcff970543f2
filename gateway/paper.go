package gateway

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"market-quoter-go/eventloop"
	"market-quoter-go/events"
	"market-quoter-go/market"
	"market-quoter-go/order"
)

var ErrUnknownOrder = errors.New("unknown order")

// PaperBroker 纸面撮合通道：同步回执订单号，回报异步经事件循环送达，
// 挂单在行情穿过时成交。dry-run 与测试用。
type PaperBroker struct {
	loop  *eventloop.Loop
	books *MarketDataBroker

	resting map[string]order.Submit

	OrderUpdate events.Evt[order.Report]
	Trade       events.Evt[market.Trade]
}

func NewPaperBroker(loop *eventloop.Loop, books *MarketDataBroker) *PaperBroker {
	p := &PaperBroker{
		loop:    loop,
		books:   books,
		resting: make(map[string]order.Submit),
	}
	books.OnBookChanged(p.matchResting)
	return p
}

func (p *PaperBroker) OnOrderUpdate(h func(order.Report)) { p.OrderUpdate.On(h) }
func (p *PaperBroker) OnTrade(h func(market.Trade))       { p.Trade.On(h) }

// SendOrder 登记挂单并异步回报 WORKING。
func (p *PaperBroker) SendOrder(s order.Submit) (order.Ack, error) {
	if s.Type != order.Limit {
		return order.Ack{}, fmt.Errorf("unsupported order type %q", s.Type)
	}
	if s.Side != market.Bid && s.Side != market.Ask {
		return order.Ack{}, fmt.Errorf("unsupported side %v", s.Side)
	}

	id := uuid.NewString()
	p.resting[id] = s
	p.post(order.Report{
		OrderID: id,
		Status:  order.StatusWorking,
		Side:    s.Side,
		Price:   s.Price,
		Size:    s.Size,
		Time:    s.Time,
	})
	return order.Ack{SentOrderClientID: id}, nil
}

// CancelOrder 移除挂单并异步回报 CANCELLED。
func (p *PaperBroker) CancelOrder(c order.Cancel) error {
	s, ok := p.resting[c.OrderID]
	if !ok {
		return ErrUnknownOrder
	}
	delete(p.resting, c.OrderID)
	p.post(order.Report{
		OrderID: c.OrderID,
		Status:  order.StatusCancelled,
		Side:    s.Side,
		Price:   s.Price,
		Size:    s.Size,
		Time:    c.Time,
	})
	return nil
}

// matchResting 行情更新后检查挂单是否被穿过。
func (p *PaperBroker) matchResting() {
	book := p.books.CurrentBook()
	if book == nil || len(book.Bids) < 1 || len(book.Asks) < 1 {
		return
	}
	bestBid := book.Bids[0].Price
	bestAsk := book.Asks[0].Price

	for id, s := range p.resting {
		filled := (s.Side == market.Bid && bestAsk <= s.Price) ||
			(s.Side == market.Ask && bestBid >= s.Price)
		if !filled {
			continue
		}
		delete(p.resting, id)
		p.post(order.Report{
			OrderID:    id,
			Status:     order.StatusComplete,
			Side:       s.Side,
			Price:      s.Price,
			Size:       s.Size,
			FilledSize: s.Size,
			Time:       book.Time,
		})
		trade := market.Trade{Side: s.Side, Price: s.Price, Size: s.Size, Time: book.Time}
		p.loop.Post(func() { p.Trade.Trigger(trade) })
	}
}

// post 把回报送回事件循环，模拟异步到达且保持单线程分发。
func (p *PaperBroker) post(r order.Report) {
	p.loop.Post(func() { p.OrderUpdate.Trigger(r) })
}

// OnTradeCompleted 供报价引擎订阅成交完成事件。
func (p *PaperBroker) OnTradeCompleted(h func()) {
	p.Trade.On(func(market.Trade) { h() })
}
