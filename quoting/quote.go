package quoting

import "time"

// Quote 单边报价的价量。
type Quote struct {
	Price float64
	Size  float64
}

// TwoSidedQuote 对外发布的双边报价；任一边可以缺席。
type TwoSidedQuote struct {
	Bid  *Quote
	Ask  *Quote
	Time time.Time
}

// SideQuote 管线中单边的工作值：Present 标记该边是否仍在报价。
type SideQuote struct {
	Price   float64
	Size    float64
	Present bool
}

func side(px, sz float64) SideQuote {
	return SideQuote{Price: px, Size: sz, Present: true}
}

// GeneratedQuote 风格函数产出的候选报价，作为值依次流过各后处理阶段。
type GeneratedQuote struct {
	Bid SideQuote
	Ask SideQuote
}

func (g GeneratedQuote) bidQuote() *Quote {
	if !g.Bid.Present {
		return nil
	}
	return &Quote{Price: g.Bid.Price, Size: g.Bid.Size}
}

func (g GeneratedQuote) askQuote() *Quote {
	if !g.Ask.Present {
		return nil
	}
	return &Quote{Price: g.Ask.Price, Size: g.Ask.Size}
}
