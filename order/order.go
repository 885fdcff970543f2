// Package order 订单模型、下单通道抽象与报价-订单映射。
package order

import (
	"time"

	"market-quoter-go/market"
)

// Status represents order lifecycle.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusWorking       Status = "WORKING"
	StatusPartial       Status = "PARTIAL"
	StatusPendingCancel Status = "PENDING_CANCEL"
	StatusComplete      Status = "COMPLETE"
	StatusCancelled     Status = "CANCELLED"
	StatusRejected      Status = "REJECTED"
)

// Terminal 终态订单不会再产生成交，可从登记中移除。
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// Type 订单类型。
type Type string

const (
	Limit  Type = "LIMIT"
	Market Type = "MARKET"
)

// TimeInForce 有效期。
type TimeInForce string

const (
	GTC TimeInForce = "GTC"
	IOC TimeInForce = "IOC"
)

// Source 订单来源标记。
type Source string

const (
	SourceQuote  Source = "QUOTE"
	SourceManual Source = "MANUAL"
)

// Submit 新订单请求。
type Submit struct {
	Side        market.Side
	Size        float64
	Price       float64
	Type        Type
	TimeInForce TimeInForce
	Source      Source
	Time        time.Time
}

// Ack 下单的同步回执，带经纪商分配的客户端订单号。
type Ack struct {
	SentOrderClientID string
}

// Cancel 撤单请求。
type Cancel struct {
	OrderID string
	Time    time.Time
}

// Report 订单状态回报。
type Report struct {
	OrderID    string
	Status     Status
	Side       market.Side
	Price      float64
	Size       float64
	FilledSize float64
	Time       time.Time
	Reason     string
}

// Broker 下单通道：命令即发即忘，回执以事件形式异步到达。
type Broker interface {
	SendOrder(s Submit) (Ack, error)
	CancelOrder(c Cancel) error
	OnOrderUpdate(func(Report))
	OnTrade(func(market.Trade))
}

// ConnectivitySource 场所连接状态。
type ConnectivitySource interface {
	Connected() bool
}
