package order

import (
	"time"

	"go.uber.org/zap"

	"market-quoter-go/eventloop"
	"market-quoter-go/market"
	"market-quoter-go/quoting"
)

// QuoteSent 一次报价动作的结果标签。
type QuoteSent int

const (
	First QuoteSent = iota
	Modify
	Delete
	UnsentDelete
	UnableToSend
)

func (q QuoteSent) String() string {
	switch q {
	case First:
		return "first"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	case UnsentDelete:
		return "unsent_delete"
	case UnableToSend:
		return "unable_to_send"
	default:
		return "unknown"
	}
}

// QuoteOrder 一笔已发报价与代表它的客户端订单号。
type QuoteOrder struct {
	Quote   quoting.Quote
	OrderID string
}

// Quoter 按方向路由到两个 ExchangeQuoter，并把发布的双边报价
// 转成下单/撤单动作。
type Quoter struct {
	log   *zap.Logger
	clock eventloop.Clock
	bid   *ExchangeQuoter
	ask   *ExchangeQuoter
}

func NewQuoter(log *zap.Logger, clock eventloop.Clock, broker Broker, conn ConnectivitySource) *Quoter {
	q := &Quoter{
		log:   log,
		clock: clock,
		bid:   newExchangeQuoter(broker, conn, market.Bid),
		ask:   newExchangeQuoter(broker, conn, market.Ask),
	}
	broker.OnOrderUpdate(q.handleOrderUpdate)
	return q
}

// Apply 使场上挂单收敛到最新发布的双边报价。
func (q *Quoter) Apply(tsq *quoting.TwoSidedQuote) {
	now := q.clock.Now()
	if tsq == nil {
		q.CancelQuote(market.Bid, now)
		q.CancelQuote(market.Ask, now)
		return
	}
	q.applySide(q.bid, tsq.Bid, tsq.Time)
	q.applySide(q.ask, tsq.Ask, tsq.Time)
}

func (q *Quoter) applySide(eq *ExchangeQuoter, quote *quoting.Quote, t time.Time) {
	var result QuoteSent
	if quote == nil {
		result = eq.cancelQuote(t)
	} else {
		result = eq.updateQuote(*quote, t)
	}
	if result == UnableToSend {
		q.log.Warn("venue not connected, quote not sent", zap.String("side", eq.side.String()))
	}
}

// UpdateQuote 更新某方向的报价。
func (q *Quoter) UpdateQuote(s market.Side, quote quoting.Quote, t time.Time) QuoteSent {
	return q.quoter(s).updateQuote(quote, t)
}

// CancelQuote 撤掉某方向的报价。
func (q *Quoter) CancelQuote(s market.Side, t time.Time) QuoteSent {
	return q.quoter(s).cancelQuote(t)
}

// SentQuotes 实现行情过滤所需的只读快照接口。
func (q *Quoter) SentQuotes(s market.Side) []market.SentQuote {
	sent := q.quoter(s).quotesSent
	out := make([]market.SentQuote, len(sent))
	for i, qo := range sent {
		out[i] = market.SentQuote{Price: qo.Quote.Price, Size: qo.Quote.Size}
	}
	return out
}

func (q *Quoter) quoter(s market.Side) *ExchangeQuoter {
	if s == market.Bid {
		return q.bid
	}
	return q.ask
}

func (q *Quoter) handleOrderUpdate(r Report) {
	if !r.Status.Terminal() {
		return
	}
	matched := q.bid.handleTerminal(r.OrderID) || q.ask.handleTerminal(r.OrderID)
	if !matched {
		// 没有对应的已发报价：假定 FIFO 回执顺序被打破或回执重复，丢弃。
		q.log.Error("terminal order update with no matching quote order",
			zap.String("order_id", r.OrderID), zap.String("status", string(r.Status)))
	}
}

// ExchangeQuoter 单方向的报价-订单状态机：任何时刻至多一张活跃挂单。
type ExchangeQuoter struct {
	broker Broker
	conn   ConnectivitySource
	side   market.Side

	activeQuote *QuoteOrder
	quotesSent  []QuoteOrder
}

func newExchangeQuoter(broker Broker, conn ConnectivitySource, s market.Side) *ExchangeQuoter {
	return &ExchangeQuoter{broker: broker, conn: conn, side: s}
}

func (eq *ExchangeQuoter) updateQuote(q quoting.Quote, t time.Time) QuoteSent {
	if !eq.conn.Connected() {
		return UnableToSend
	}
	if eq.activeQuote != nil {
		return eq.modify(q, t)
	}
	return eq.start(q, t)
}

func (eq *ExchangeQuoter) cancelQuote(t time.Time) QuoteSent {
	if !eq.conn.Connected() {
		return UnableToSend
	}
	return eq.stop(t)
}

// modify 无原生改单，总是全量替换：同一时间戳下先撤再发。
func (eq *ExchangeQuoter) modify(q quoting.Quote, t time.Time) QuoteSent {
	eq.stop(t)
	eq.start(q, t)
	return Modify
}

func (eq *ExchangeQuoter) start(q quoting.Quote, t time.Time) QuoteSent {
	ack, err := eq.broker.SendOrder(Submit{
		Side:        eq.side,
		Size:        q.Size,
		Price:       q.Price,
		Type:        Limit,
		TimeInForce: GTC,
		Source:      SourceQuote,
		Time:        t,
	})
	if err != nil {
		return UnableToSend
	}

	qo := QuoteOrder{Quote: q, OrderID: ack.SentOrderClientID}
	eq.quotesSent = append(eq.quotesSent, qo)
	eq.activeQuote = &qo
	return First
}

func (eq *ExchangeQuoter) stop(t time.Time) QuoteSent {
	if eq.activeQuote == nil {
		return UnsentDelete
	}
	_ = eq.broker.CancelOrder(Cancel{OrderID: eq.activeQuote.OrderID, Time: t})
	eq.activeQuote = nil
	return Delete
}

// handleTerminal 终态回报的对账：命中活跃报价则清空，并把该单
// 从已发列表移除。重复回报是无操作。
func (eq *ExchangeQuoter) handleTerminal(orderID string) bool {
	if eq.activeQuote != nil && eq.activeQuote.OrderID == orderID {
		eq.activeQuote = nil
	}

	matched := false
	kept := eq.quotesSent[:0]
	for _, qo := range eq.quotesSent {
		if qo.OrderID == orderID {
			matched = true
			continue
		}
		kept = append(kept, qo)
	}
	eq.quotesSent = kept
	return matched
}
