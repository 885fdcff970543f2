package gateway

import (
	"encoding/json"
	"time"

	"market-quoter-go/market"
)

// CombinedMessage combined stream 的外层包装。
type CombinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// DepthUpdate depth 推送的核心字段。
type DepthUpdate struct {
	Symbol string           `json:"s"`
	Bids   [][2]json.Number `json:"b"`
	Asks   [][2]json.Number `json:"a"`
}

// ParseCombinedDepth 解析 combined stream 的 depth 消息，
// 转成按档排列的深度快照。
func ParseCombinedDepth(raw []byte, t time.Time) (symbol string, mkt *market.Market, err error) {
	var msg CombinedMessage
	if err = json.Unmarshal(raw, &msg); err != nil {
		return
	}
	var depth DepthUpdate
	if err = json.Unmarshal(msg.Data, &depth); err != nil {
		return
	}
	symbol = depth.Symbol
	mkt = &market.Market{
		Bids: parseLevels(depth.Bids),
		Asks: parseLevels(depth.Asks),
		Time: t,
	}
	return
}

func parseLevels(raw [][2]json.Number) []market.MarketSide {
	n := len(raw)
	if n > market.MaxDepth {
		n = market.MaxDepth
	}
	levels := make([]market.MarketSide, 0, n)
	for _, l := range raw[:n] {
		px, _ := l[0].Float64()
		sz, _ := l[1].Float64()
		levels = append(levels, market.MarketSide{Price: px, Size: sz})
	}
	return levels
}
