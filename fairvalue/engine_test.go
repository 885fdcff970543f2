package fairvalue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-quoter-go/market"
)

type stubClock struct{ t time.Time }

func (s *stubClock) Now() time.Time { return s.t }

type stubMarkets struct {
	mkt      *market.Market
	handlers []func()
}

func (s *stubMarkets) Latest() *market.Market { return s.mkt }
func (s *stubMarkets) OnChange(h func())      { s.handlers = append(s.handlers, h) }

func (s *stubMarkets) set(m *market.Market) {
	s.mkt = m
	for _, h := range s.handlers {
		h()
	}
}

func book(bid, ask float64) *market.Market {
	return &market.Market{
		Bids: []market.MarketSide{{Price: bid, Size: 1}},
		Asks: []market.MarketSide{{Price: ask, Size: 1}},
	}
}

func TestMidPrice(t *testing.T) {
	markets := &stubMarkets{}
	e := NewEngine(&stubClock{t: time.Unix(5, 0)}, markets)

	markets.set(book(99, 101))

	fv := e.Latest()
	require.NotNil(t, fv)
	assert.Equal(t, 100.0, fv.Price)
	assert.Equal(t, time.Unix(5, 0), fv.Time)

	px, ok := e.LatestPrice()
	assert.True(t, ok)
	assert.Equal(t, 100.0, px)
}

func TestOneSidedBookClearsFairValue(t *testing.T) {
	markets := &stubMarkets{}
	e := NewEngine(&stubClock{}, markets)

	markets.set(book(99, 101))
	require.NotNil(t, e.Latest())

	markets.set(&market.Market{Bids: []market.MarketSide{{Price: 99, Size: 1}}})
	assert.Nil(t, e.Latest())

	_, ok := e.LatestPrice()
	assert.False(t, ok)
}

func TestUnchangedMidDoesNotNotify(t *testing.T) {
	markets := &stubMarkets{}
	e := NewEngine(&stubClock{}, markets)

	var notified int
	e.OnChange(func() { notified++ })

	markets.set(book(99, 101))
	assert.Equal(t, 1, notified)

	// 盘口移动但中间价不变
	markets.set(book(99.5, 100.5))
	assert.Equal(t, 1, notified)

	markets.set(book(100, 101))
	assert.Equal(t, 2, notified)

	// 连续无行情只通知一次
	markets.set(nil)
	markets.set(nil)
	assert.Equal(t, 3, notified)
}
