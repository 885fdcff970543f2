// Package events 提供组件间的同步事件通知。
package events

// Evt 是一个类型化的事件源：订阅者按注册顺序被同步调用。
// 所有触发都发生在事件循环的单一 goroutine 上，因此不加锁。
type Evt[T any] struct {
	handlers []func(T)
}

// On 注册一个订阅回调。
func (e *Evt[T]) On(h func(T)) {
	e.handlers = append(e.handlers, h)
}

// Trigger 依注册顺序同步调用所有订阅者。
func (e *Evt[T]) Trigger(v T) {
	for _, h := range e.handlers {
		h(v)
	}
}

// Signal 是无负载的事件源。
type Signal struct {
	handlers []func()
}

func (s *Signal) On(h func()) {
	s.handlers = append(s.handlers, h)
}

func (s *Signal) Trigger() {
	for _, h := range s.handlers {
		h()
	}
}
