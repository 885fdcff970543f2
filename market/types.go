// Package market 定义行情数据模型与自报价过滤。
package market

import "time"

// Side 买卖方向。
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// MaxDepth 单边保留的最大档位数。
const MaxDepth = 25

// MarketSide 行情中的一个价格档位。
type MarketSide struct {
	Price float64
	Size  float64
}

// Market 多档深度快照，买卖各一列，最优价在前。
// 每次更新整体替换，不做原地修改。
type Market struct {
	Bids []MarketSide
	Asks []MarketSide
	Time time.Time
}

// Trade 一笔成交。
type Trade struct {
	Side  Side
	Price float64
	Size  float64
	Time  time.Time
}
