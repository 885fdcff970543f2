// Package ewma 维护公允价的指数加权均线，作为趋势保护参考。
package ewma

import (
	"context"
	"time"

	"market-quoter-go/eventloop"
	"market-quoter-go/events"
)

// PriceSource 采样的价格来源。
type PriceSource interface {
	LatestPrice() (float64, bool)
}

// Calculator 按固定周期采样并更新均线。
type Calculator struct {
	alpha  float64
	source PriceSource

	value       float64
	initialized bool

	Updated events.Evt[float64]
}

func NewCalculator(alpha float64, source PriceSource) *Calculator {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.095
	}
	return &Calculator{alpha: alpha, source: source}
}

// Latest 当前均线值；尚未采到价格时 ok 为 false。
func (c *Calculator) Latest() (float64, bool) {
	return c.value, c.initialized
}

func (c *Calculator) OnChange(h func()) {
	c.Updated.On(func(float64) { h() })
}

// Start 在事件循环上周期采样。
func (c *Calculator) Start(ctx context.Context, loop *eventloop.Loop, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	loop.Every(ctx, interval, c.sample)
}

func (c *Calculator) sample() {
	px, ok := c.source.LatestPrice()
	if !ok {
		return
	}
	if !c.initialized {
		c.value = px
		c.initialized = true
	} else {
		c.value = c.alpha*px + (1-c.alpha)*c.value
	}
	c.Updated.Trigger(c.value)
}
