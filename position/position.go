// Package position 仓位上报与目标仓位管理。
package position

import (
	"time"

	"market-quoter-go/events"
)

// Report 账户仓位快照：可用 + 冻结。
type Report struct {
	BaseAmount      float64
	BaseHeldAmount  float64
	QuoteAmount     float64
	QuoteHeldAmount float64
	Time            time.Time
}

// TotalBase 基础币总仓位。
func (r Report) TotalBase() float64 {
	return r.BaseAmount + r.BaseHeldAmount
}

// Broker 仓位来源。
type Broker interface {
	LatestReport() (Report, bool)
	OnChange(func())
}

// StaticBroker 固定仓位的简单实现，dry-run 与测试用。
type StaticBroker struct {
	report Report
	has    bool

	PositionChanged events.Evt[Report]
}

func NewStaticBroker() *StaticBroker { return &StaticBroker{} }

func (b *StaticBroker) LatestReport() (Report, bool) { return b.report, b.has }

func (b *StaticBroker) OnChange(h func()) {
	b.PositionChanged.On(func(Report) { h() })
}

// Update 替换仓位快照并通知订阅者。
func (b *StaticBroker) Update(r Report) {
	b.report = r
	b.has = true
	b.PositionChanged.Trigger(r)
}
