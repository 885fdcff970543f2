// Package quoting 实现报价计算：风格策略、后处理管线与报价引擎。
package quoting

import "fmt"

// Mode 报价风格。
type Mode int

const (
	Top Mode = iota
	Join
	InverseTop
	InverseJoin
	PingPong
)

var modeNames = map[Mode]string{
	Top:         "top",
	Join:        "join",
	InverseTop:  "inverse_top",
	InverseJoin: "inverse_join",
	PingPong:    "ping_pong",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode 解析配置中的风格名。
func ParseMode(s string) (Mode, error) {
	for m, n := range modeNames {
		if n == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown quoting mode %q", s)
}

// QuotingParameters 报价参数快照。参数变更时整体替换，不做字段级修改。
type QuotingParameters struct {
	Mode                         Mode
	Width                        float64 // 买卖价围绕公允价的最小总价差
	Size                         float64 // 双边标准报价量
	StepOverSize                 float64 // 一档量低于该值时跳到二档
	PositionDivergence           float64 // 允许偏离目标仓位的范围
	AggressivePositionRebalancing bool
	APRMultiplier                float64 // 激进调仓时的量放大倍数
	EwmaProtection               bool
	TradesPerMinute              float64 // 单方向每分钟成交上限
	TargetBasePosition           float64 // 期望持有的基础仓位
}
