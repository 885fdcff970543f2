// Package eventloop 提供单线程事件分发：所有组件状态只在该循环内被修改。
package eventloop

import (
	"context"
	"time"
)

// Clock 抽象当前时间，便于测试注入。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock 返回基于 time.Now 的时钟。
func RealClock() Clock { return realClock{} }

// Loop 串行分发事件。外部输入（行情、订单回报、定时器、参数修改）
// 经 Post 进入队列，Run 在单一 goroutine 上逐个执行到完成。
type Loop struct {
	clock  Clock
	events chan func()
}

func New(clock Clock) *Loop {
	if clock == nil {
		clock = realClock{}
	}
	return &Loop{
		clock:  clock,
		events: make(chan func(), 1024),
	}
}

func (l *Loop) Clock() Clock { return l.clock }

// Post 将事件排入队列。可从任意 goroutine 调用。
func (l *Loop) Post(fn func()) {
	l.events <- fn
}

// Run 持续分发直到 ctx 结束。每个事件（含其触发的级联）执行完
// 才会取下一个。
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}

// RunPending 同步执行当前已排队的事件，测试用。
func (l *Loop) RunPending() {
	for {
		select {
		case fn := <-l.events:
			fn()
		default:
			return
		}
	}
}

// Every 启动周期定时器，到期时把 fn 投递回事件循环执行。
func (l *Loop) Every(ctx context.Context, d time.Duration, fn func()) {
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Post(fn)
			}
		}
	}()
}

// Scheduler 合并同一轮内的多次触发：在下次分发机会之前无论
// Schedule 被调用多少次，action 只执行一次，且使用执行时刻的最新输入。
type Scheduler struct {
	loop    *Loop
	action  func()
	pending bool
}

func NewScheduler(loop *Loop, action func()) *Scheduler {
	return &Scheduler{loop: loop, action: action}
}

// Schedule 只能在事件循环线程内调用。
func (s *Scheduler) Schedule() {
	if s.pending {
		return
	}
	s.pending = true
	s.loop.Post(func() {
		s.pending = false
		s.action()
	})
}
