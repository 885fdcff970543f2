package quoting

import "math"

// computeInverse 盘口价差大于 width 时反向向外扩开报价，而不是加入盘口；
// 价差过窄（不足 2/3 width）时再各外扩 width/4。
func computeInverse(input QuoteInput, nudge bool) (GeneratedQuote, bool) {
	gq, ok := topOfMarket(input)
	if !ok {
		return GeneratedQuote{}, false
	}

	mktWidth := math.Abs(gq.Ask.Price - gq.Bid.Price)
	if mktWidth > input.Params.Width {
		gq.Ask.Price += input.Params.Width
		gq.Bid.Price -= input.Params.Width
	}

	if nudge {
		if gq.Bid.Size > joinNudgeSize {
			gq.Bid.Price += input.MinTickIncrement
		}
		if gq.Ask.Size > joinNudgeSize {
			gq.Ask.Price -= input.MinTickIncrement
		}
	}

	if mktWidth < 2.0*input.Params.Width/3.0 {
		gq.Ask.Price += input.Params.Width / 4.0
		gq.Bid.Price -= input.Params.Width / 4.0
	}

	gq.Bid.Size = input.Params.Size
	gq.Ask.Size = input.Params.Size
	return gq, true
}

// InverseTopStyle 反向报价并在档位量足够时向内挤一个 tick。
type InverseTopStyle struct{}

func (InverseTopStyle) Mode() Mode { return InverseTop }

func (InverseTopStyle) GenerateQuote(input QuoteInput) (GeneratedQuote, bool) {
	return computeInverse(input, true)
}

// InverseJoinStyle 反向报价，不做 tick 调整。
type InverseJoinStyle struct{}

func (InverseJoinStyle) Mode() Mode { return InverseJoin }

func (InverseJoinStyle) GenerateQuote(input QuoteInput) (GeneratedQuote, bool) {
	return computeInverse(input, false)
}
