package config

import (
	"market-quoter-go/events"
	"market-quoter-go/quoting"
)

// ParametersRepository 报价参数仓库：保存最新快照并在替换时通知。
// 只在事件循环线程上更新。
type ParametersRepository struct {
	latest quoting.QuotingParameters

	NewParameters events.Evt[quoting.QuotingParameters]
}

func NewParametersRepository(initial quoting.QuotingParameters) *ParametersRepository {
	return &ParametersRepository{latest: initial}
}

// Latest 当前参数快照。
func (r *ParametersRepository) Latest() quoting.QuotingParameters { return r.latest }

func (r *ParametersRepository) OnChange(h func()) {
	r.NewParameters.On(func(quoting.QuotingParameters) { h() })
}

// TargetBasePosition 供目标仓位管理器读取。
func (r *ParametersRepository) TargetBasePosition() float64 {
	return r.latest.TargetBasePosition
}

// Update 整体替换参数并通知订阅者。
func (r *ParametersRepository) Update(p quoting.QuotingParameters) {
	if r.latest == p {
		return
	}
	r.latest = p
	r.NewParameters.Trigger(p)
}
