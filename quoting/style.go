package quoting

import (
	"market-quoter-go/fairvalue"
	"market-quoter-go/market"
)

// QuoteInput 风格函数的输入快照。
type QuoteInput struct {
	Market           *market.Market // 过滤后的行情
	FV               *fairvalue.FairValue
	Params           QuotingParameters
	MinTickIncrement float64
}

// Style 一种报价风格：纯函数，无内部状态。
// ok 为 false 表示行情不足以给出报价。
type Style interface {
	Mode() Mode
	GenerateQuote(input QuoteInput) (GeneratedQuote, bool)
}

// Registry 按 Mode 选择风格；未注册的模式退回到 nullStyle。
type Registry struct {
	styles map[Mode]Style
}

func NewRegistry(styles ...Style) *Registry {
	r := &Registry{styles: make(map[Mode]Style, len(styles))}
	for _, s := range styles {
		r.styles[s.Mode()] = s
	}
	return r
}

// DefaultRegistry 注册全部内置风格。
func DefaultRegistry() *Registry {
	return NewRegistry(
		TopStyle{}, JoinStyle{}, InverseTopStyle{}, InverseJoinStyle{}, PingPongStyle{},
	)
}

func (r *Registry) Get(m Mode) Style {
	if s, ok := r.styles[m]; ok {
		return s
	}
	return nullStyle{}
}

type nullStyle struct{}

func (nullStyle) Mode() Mode { return Mode(-1) }

func (nullStyle) GenerateQuote(QuoteInput) (GeneratedQuote, bool) {
	return GeneratedQuote{}, false
}
