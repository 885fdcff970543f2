// Package gateway 场所接入：连接状态、行情推送与模拟撮合通道。
package gateway

import "market-quoter-go/events"

// ConnectivityStatus 场所连接状态。
type ConnectivityStatus int

const (
	Disconnected ConnectivityStatus = iota
	Connected
)

func (s ConnectivityStatus) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Details 场所静态信息与连接状态。状态只在事件循环线程上变更。
type Details struct {
	minTick float64
	status  ConnectivityStatus

	ConnectChanged events.Evt[ConnectivityStatus]
}

func NewDetails(minTick float64) *Details {
	return &Details{minTick: minTick}
}

// MinTickIncrement 最小价格步进。
func (d *Details) MinTickIncrement() float64 { return d.minTick }

// Connected 当前是否可发单。
func (d *Details) Connected() bool { return d.status == Connected }

func (d *Details) Status() ConnectivityStatus { return d.status }

// SetStatus 更新连接状态并在变化时通知。
func (d *Details) SetStatus(s ConnectivityStatus) {
	if d.status == s {
		return
	}
	d.status = s
	d.ConnectChanged.Trigger(s)
}
