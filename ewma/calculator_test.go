package ewma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPrices struct {
	px float64
	ok bool
}

func (s *stubPrices) LatestPrice() (float64, bool) { return s.px, s.ok }

func TestFirstSampleSeedsValue(t *testing.T) {
	prices := &stubPrices{px: 100, ok: true}
	c := NewCalculator(0.5, prices)

	_, ok := c.Latest()
	assert.False(t, ok)

	c.sample()
	v, ok := c.Latest()
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestExponentialDecay(t *testing.T) {
	prices := &stubPrices{px: 100, ok: true}
	c := NewCalculator(0.5, prices)
	c.sample()

	prices.px = 110
	c.sample()
	v, _ := c.Latest()
	assert.InDelta(t, 105, v, 1e-9) // 0.5*110 + 0.5*100

	c.sample()
	v, _ = c.Latest()
	assert.InDelta(t, 107.5, v, 1e-9)
}

func TestMissingPriceSkipsSample(t *testing.T) {
	prices := &stubPrices{ok: false}
	c := NewCalculator(0.5, prices)

	var notified int
	c.OnChange(func() { notified++ })

	c.sample()
	_, ok := c.Latest()
	assert.False(t, ok)
	assert.Zero(t, notified)
}

func TestInvalidAlphaFallsBack(t *testing.T) {
	prices := &stubPrices{px: 100, ok: true}
	c := NewCalculator(1.5, prices)
	c.sample()

	prices.px = 200
	c.sample()
	v, _ := c.Latest()
	assert.InDelta(t, 0.095*200+0.905*100, v, 1e-9)
}
