package quoting

// joinNudgeSize 一档量超过该值时，Top/PingPong 风格向对手方向挤进一个 tick，
// 抢在被动档位之前排队。
const joinNudgeSize = 0.2

// topOfMarket 选取每边的可用档位：一档量超过 stepOverSize 用一档，
// 否则退到二档；只有一档时总是用一档。
func topOfMarket(input QuoteInput) (GeneratedQuote, bool) {
	mkt := input.Market
	if len(mkt.Bids) < 1 || len(mkt.Asks) < 1 {
		return GeneratedQuote{}, false
	}

	topBid := mkt.Bids[0]
	if topBid.Size <= input.Params.StepOverSize && len(mkt.Bids) > 1 {
		topBid = mkt.Bids[1]
	}

	topAsk := mkt.Asks[0]
	if topAsk.Size <= input.Params.StepOverSize && len(mkt.Asks) > 1 {
		topAsk = mkt.Asks[1]
	}

	return GeneratedQuote{
		Bid: side(topBid.Price, topBid.Size),
		Ask: side(topAsk.Price, topAsk.Size),
	}, true
}

// computeTopJoin Top/Join/PingPong 共用的公允价带报价。
// nudge 为 true 时（Top 与 PingPong），档位量足够大则向内挤一个 tick。
func computeTopJoin(input QuoteInput, nudge bool) (GeneratedQuote, bool) {
	gq, ok := topOfMarket(input)
	if !ok {
		return GeneratedQuote{}, false
	}

	if nudge && gq.Bid.Size > joinNudgeSize {
		gq.Bid.Price += input.MinTickIncrement
	}

	// 公允价带：买价不得高于 fv - width/2
	minBid := input.FV.Price - input.Params.Width/2.0
	if gq.Bid.Price > minBid {
		gq.Bid.Price = minBid
	}

	if nudge && gq.Ask.Size > joinNudgeSize {
		gq.Ask.Price -= input.MinTickIncrement
	}

	// 卖价不得低于 fv + width/2
	minAsk := input.FV.Price + input.Params.Width/2.0
	if gq.Ask.Price < minAsk {
		gq.Ask.Price = minAsk
	}

	// 报价量不看盘口，固定用参数量
	gq.Bid.Size = input.Params.Size
	gq.Ask.Size = input.Params.Size
	return gq, true
}

// TopStyle 跟随盘口并领先一个 tick。
type TopStyle struct{}

func (TopStyle) Mode() Mode { return Top }

func (TopStyle) GenerateQuote(input QuoteInput) (GeneratedQuote, bool) {
	return computeTopJoin(input, true)
}

// JoinStyle 直接加入盘口档位。
type JoinStyle struct{}

func (JoinStyle) Mode() Mode { return Join }

func (JoinStyle) GenerateQuote(input QuoteInput) (GeneratedQuote, bool) {
	return computeTopJoin(input, false)
}

// PingPongStyle 与 Top 同式；成交后的地板/天花板由引擎按 safety 参考价施加。
type PingPongStyle struct{}

func (PingPongStyle) Mode() Mode { return PingPong }

func (PingPongStyle) GenerateQuote(input QuoteInput) (GeneratedQuote, bool) {
	return computeTopJoin(input, true)
}
