package position

import "market-quoter-go/events"

// TargetPosition 期望持有的基础仓位。
type TargetPosition struct {
	Data float64
}

// ParamsSource 提供目标仓位参数。
type ParamsSource interface {
	TargetBasePosition() float64
	OnChange(func())
}

// TargetManager 发布最新目标仓位；参数变更时重新计算。
type TargetManager struct {
	params ParamsSource
	latest *TargetPosition

	NewTargetPosition events.Evt[TargetPosition]
}

func NewTargetManager(params ParamsSource) *TargetManager {
	m := &TargetManager{params: params}
	params.OnChange(m.recompute)
	m.recompute()
	return m
}

// Latest 最近的目标仓位；尚未确定时 ok 为 false。
func (m *TargetManager) Latest() (float64, bool) {
	if m.latest == nil {
		return 0, false
	}
	return m.latest.Data, true
}

func (m *TargetManager) OnChange(h func()) {
	m.NewTargetPosition.On(func(TargetPosition) { h() })
}

func (m *TargetManager) recompute() {
	target := m.params.TargetBasePosition()
	if m.latest != nil && m.latest.Data == target {
		return
	}
	m.latest = &TargetPosition{Data: target}
	m.NewTargetPosition.Trigger(*m.latest)
}
