package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvtOrder(t *testing.T) {
	var e Evt[int]
	var got []int
	e.On(func(v int) { got = append(got, v*10) })
	e.On(func(v int) { got = append(got, v*100) })

	e.Trigger(3)

	assert.Equal(t, []int{30, 300}, got, "subscribers run in registration order")
}

func TestEvtNoSubscribers(t *testing.T) {
	var e Evt[string]
	e.Trigger("noop") // must not panic
}

func TestSignal(t *testing.T) {
	var s Signal
	n := 0
	s.On(func() { n++ })
	s.On(func() { n++ })
	s.Trigger()
	s.Trigger()
	assert.Equal(t, 4, n)
}
