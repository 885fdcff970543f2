package quoting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"market-quoter-go/eventloop"
	"market-quoter-go/fairvalue"
	"market-quoter-go/market"
	"market-quoter-go/position"
	"market-quoter-go/safety"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

type fakeTick struct{ tick float64 }

func (f fakeTick) MinTickIncrement() float64 { return f.tick }

type fakeMarkets struct{ m *market.Market }

func (f *fakeMarkets) Latest() *market.Market { return f.m }
func (f *fakeMarkets) OnChange(func())        {}

type fakeFV struct{ fv *fairvalue.FairValue }

func (f *fakeFV) Latest() *fairvalue.FairValue { return f.fv }
func (f *fakeFV) OnChange(func())              {}

type fakeParams struct{ p QuotingParameters }

func (f *fakeParams) Latest() QuotingParameters { return f.p }
func (f *fakeParams) OnChange(func())           {}

type fakeTrades struct{}

func (fakeTrades) OnTradeCompleted(func()) {}

type fakeIndicator struct {
	v   float64
	has bool
}

func (f *fakeIndicator) Latest() (float64, bool) { return f.v, f.has }
func (f *fakeIndicator) OnChange(func())         {}

type fakeTarget struct {
	v   float64
	has bool
}

func (f *fakeTarget) Latest() (float64, bool) { return f.v, f.has }
func (f *fakeTarget) OnChange(func())         {}

type fakeSafety struct {
	v   safety.Values
	has bool
}

func (f *fakeSafety) Latest() (safety.Values, bool) { return f.v, f.has }
func (f *fakeSafety) OnChange(func())               {}

type fakePositions struct {
	r   position.Report
	has bool
}

func (f *fakePositions) LatestReport() (position.Report, bool) { return f.r, f.has }
func (f *fakePositions) OnChange(func())                       {}

type fixtures struct {
	clock     *fakeClock
	markets   *fakeMarkets
	fv        *fakeFV
	params    *fakeParams
	ewma      *fakeIndicator
	target    *fakeTarget
	safeties  *fakeSafety
	positions *fakePositions
	published []*TwoSidedQuote
}

func newTestEngine(params QuotingParameters) (*Engine, *fixtures) {
	f := &fixtures{
		clock: &fakeClock{t: time.Unix(1_700_000_000, 0)},
		markets: &fakeMarkets{m: &market.Market{
			Bids: []market.MarketSide{{Price: 99, Size: 0.5}},
			Asks: []market.MarketSide{{Price: 101, Size: 0.5}},
		}},
		fv:        &fakeFV{fv: &fairvalue.FairValue{Price: 100}},
		params:    &fakeParams{p: params},
		ewma:      &fakeIndicator{},
		target:    &fakeTarget{has: true},
		safeties:  &fakeSafety{has: true},
		positions: &fakePositions{has: true},
	}
	loop := eventloop.New(f.clock)
	e := NewEngine(zap.NewNop(), loop, DefaultRegistry(), Deps{
		Details:   fakeTick{tick: 0.01},
		Markets:   f.markets,
		FairValue: f.fv,
		Params:    f.params,
		Trades:    fakeTrades{},
		Positions: f.positions,
		Ewma:      f.ewma,
		Target:    f.target,
		Safeties:  f.safeties,
	})
	e.OnQuoteChanged(func(q *TwoSidedQuote) { f.published = append(f.published, q) })
	return e, f
}

func topParams() QuotingParameters {
	return QuotingParameters{Mode: Top, Width: 2, Size: 1, StepOverSize: 0.1}
}

func TestRecalcTopScenario(t *testing.T) {
	e, f := newTestEngine(topParams())

	e.recalcQuote(f.clock.t)

	q := e.LatestQuote()
	require.NotNil(t, q)
	require.NotNil(t, q.Bid)
	require.NotNil(t, q.Ask)
	assert.InDelta(t, 99.0, q.Bid.Price, 1e-9)
	assert.InDelta(t, 101.0, q.Ask.Price, 1e-9)
	assert.InDelta(t, 1.0, q.Bid.Size, 1e-9)
	assert.InDelta(t, 1.0, q.Ask.Size, 1e-9)
	assert.Len(t, f.published, 1)
}

func TestRecalcMissingInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fixtures)
	}{
		{"no fair value", func(f *fixtures) { f.fv.fv = nil }},
		{"no filtered market", func(f *fixtures) { f.markets.m = nil }},
		{"no target position", func(f *fixtures) { f.target.has = false }},
		{"no position report", func(f *fixtures) { f.positions.has = false }},
		{"no safety snapshot", func(f *fixtures) { f.safeties.has = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, f := newTestEngine(topParams())
			e.recalcQuote(f.clock.t)
			require.NotNil(t, e.LatestQuote())

			tt.mutate(f)
			e.recalcQuote(f.clock.t)
			assert.Nil(t, e.LatestQuote(), "missing input must withdraw the quote")
		})
	}
}

func TestEwmaProtection(t *testing.T) {
	params := topParams()
	params.EwmaProtection = true
	e, f := newTestEngine(params)
	f.ewma.v = 102.5
	f.ewma.has = true

	e.recalcQuote(f.clock.t)

	q := e.LatestQuote()
	require.NotNil(t, q)
	require.NotNil(t, q.Ask)
	assert.InDelta(t, 102.5, q.Ask.Price, 1e-9, "ask raised to the trend indicator")
}

func TestRebalancingCutoffs(t *testing.T) {
	params := topParams()
	params.PositionDivergence = 10
	params.TargetBasePosition = 100

	t.Run("under-invested cancels ask", func(t *testing.T) {
		e, f := newTestEngine(params)
		f.target.v = 100
		f.positions.r = position.Report{BaseAmount: 89.9} // total < 100 - 10
		e.recalcQuote(f.clock.t)
		q := e.LatestQuote()
		require.NotNil(t, q)
		assert.Nil(t, q.Ask)
		assert.NotNil(t, q.Bid)
	})

	t.Run("over-invested cancels bid", func(t *testing.T) {
		e, f := newTestEngine(params)
		f.target.v = 100
		f.positions.r = position.Report{BaseAmount: 110.1}
		e.recalcQuote(f.clock.t)
		q := e.LatestQuote()
		require.NotNil(t, q)
		assert.Nil(t, q.Bid)
		assert.NotNil(t, q.Ask)
	})

	t.Run("exact boundary does not trigger", func(t *testing.T) {
		e, f := newTestEngine(params)
		f.target.v = 100
		f.positions.r = position.Report{BaseAmount: 90} // total == target - divergence
		e.recalcQuote(f.clock.t)
		q := e.LatestQuote()
		require.NotNil(t, q)
		assert.NotNil(t, q.Bid)
		assert.NotNil(t, q.Ask)
	})

	t.Run("held amount counts toward total", func(t *testing.T) {
		e, f := newTestEngine(params)
		f.target.v = 100
		f.positions.r = position.Report{BaseAmount: 60, BaseHeldAmount: 50.1}
		e.recalcQuote(f.clock.t)
		q := e.LatestQuote()
		require.NotNil(t, q)
		assert.Nil(t, q.Bid)
	})
}

func TestAggressiveRebalancingSizesBid(t *testing.T) {
	gq := GeneratedQuote{Bid: side(99, 1), Ask: side(101, 1)}
	params := QuotingParameters{
		Size: 1, PositionDivergence: 10,
		AggressivePositionRebalancing: true, APRMultiplier: 3,
	}

	out := applyPositionRebalancing(gq, 50, 100, params)
	assert.False(t, out.Ask.Present)
	require.True(t, out.Bid.Present)
	assert.InDelta(t, 3.0, out.Bid.Size, 1e-9, "apr*size caps below the gap of 50")

	out = applyPositionRebalancing(gq, 98, 100.5, QuotingParameters{
		Size: 1, PositionDivergence: 2,
		AggressivePositionRebalancing: true, APRMultiplier: 5,
	})
	assert.False(t, out.Ask.Present)
	assert.InDelta(t, 2.5, out.Bid.Size, 1e-9, "gap caps below apr*size")
}

func TestPingPongFloorAndCeiling(t *testing.T) {
	gq := GeneratedQuote{Bid: side(97.5, 1), Ask: side(98.5, 1)}
	sv := safety.Values{BuyPing: 98, SellPong: 98}

	out := applyPingPong(gq, sv, 1)
	assert.InDelta(t, 99.0, out.Ask.Price, 1e-9, "ask floored at buyPing + width")
	assert.InDelta(t, 97.0, out.Bid.Price, 1e-9, "bid capped at sellPong - width")
}

func TestPingPongIgnoredWithoutReference(t *testing.T) {
	gq := GeneratedQuote{Bid: side(97.5, 1), Ask: side(98.5, 1)}
	out := applyPingPong(gq, safety.Values{}, 1)
	assert.Equal(t, gq, out)
}

func TestTradeRateLimit(t *testing.T) {
	params := topParams()
	params.TradesPerMinute = 5

	e, f := newTestEngine(params)
	f.safeties.v = safety.Values{Buy: 6}
	e.recalcQuote(f.clock.t)
	q := e.LatestQuote()
	require.NotNil(t, q)
	assert.Nil(t, q.Bid, "buy rate over the limit suppresses the bid")
	assert.NotNil(t, q.Ask)

	e2, f2 := newTestEngine(params)
	f2.safeties.v = safety.Values{Sell: 6}
	e2.recalcQuote(f2.clock.t)
	q2 := e2.LatestQuote()
	require.NotNil(t, q2)
	assert.Nil(t, q2.Ask)
	assert.NotNil(t, q2.Bid)
}

func TestRoundingNeverCrosses(t *testing.T) {
	gq := GeneratedQuote{Bid: side(100.004, 1), Ask: side(100.001, 1)}
	out := roundQuote(gq, 0.01)
	require.True(t, out.Bid.Present)
	require.True(t, out.Ask.Present)
	assert.Greater(t, out.Ask.Price, out.Bid.Price)
	assert.InDelta(t, 100.0, out.Bid.Price, 1e-9)
	assert.InDelta(t, 100.01, out.Ask.Price, 1e-9)
}

func TestRoundingTickAlignmentAndMinSize(t *testing.T) {
	gq := GeneratedQuote{Bid: side(99.123, 0.0001), Ask: side(101.456, 0.0001)}
	out := roundQuote(gq, 0.01)
	assert.InDelta(t, 99.12, out.Bid.Price, 1e-9)
	assert.InDelta(t, 101.46, out.Ask.Price, 1e-9)
	assert.InDelta(t, 0.01, out.Bid.Size, 1e-9, "size floored at one tick")
	assert.InDelta(t, 0.01, out.Ask.Size, 1e-9)
}

func TestAntiFlickerSubTickJitter(t *testing.T) {
	e, f := newTestEngine(topParams())
	e.recalcQuote(f.clock.t)
	first := e.LatestQuote()
	require.NotNil(t, first)

	// 行情亚 tick 抖动：发布值保持不变
	f.markets.m = &market.Market{
		Bids: []market.MarketSide{{Price: 99.004, Size: 0.5}},
		Asks: []market.MarketSide{{Price: 101.004, Size: 0.5}},
	}
	f.fv.fv = &fairvalue.FairValue{Price: 100.004}
	f.clock.t = f.clock.t.Add(time.Second)
	e.recalcQuote(f.clock.t)

	assert.Same(t, first, e.LatestQuote(), "sub-tick move must not republish")
	assert.Len(t, f.published, 1)
}

func TestAntiFlickerSuppressesFastTighten(t *testing.T) {
	e, f := newTestEngine(topParams())
	e.recalcQuote(f.clock.t)
	first := e.LatestQuote()
	require.NotNil(t, first)

	// 100ms 后买价上移（收窄）：被抑制
	f.markets.m = &market.Market{
		Bids: []market.MarketSide{{Price: 99.5, Size: 0.15}},
		Asks: []market.MarketSide{{Price: 101, Size: 0.5}},
	}
	f.fv.fv = &fairvalue.FairValue{Price: 101}
	f.clock.t = f.clock.t.Add(100 * time.Millisecond)
	e.recalcQuote(f.clock.t)
	assert.InDelta(t, first.Bid.Price, e.LatestQuote().Bid.Price, 1e-9)

	// 超过 300ms 后同样的变动放行
	f.clock.t = f.clock.t.Add(400 * time.Millisecond)
	e.recalcQuote(f.clock.t)
	assert.InDelta(t, 99.5, e.LatestQuote().Bid.Price, 1e-9)
}

func TestAntiFlickerWideningPassesImmediately(t *testing.T) {
	e, f := newTestEngine(topParams())
	e.recalcQuote(f.clock.t)
	require.NotNil(t, e.LatestQuote())

	// 买价下移是扩宽，无需等待
	f.markets.m = &market.Market{
		Bids: []market.MarketSide{{Price: 98, Size: 0.15}},
		Asks: []market.MarketSide{{Price: 101, Size: 0.5}},
	}
	f.clock.t = f.clock.t.Add(50 * time.Millisecond)
	e.recalcQuote(f.clock.t)
	assert.InDelta(t, 98.0, e.LatestQuote().Bid.Price, 1e-9)
}

func TestAntiFlickerSizeChangeAlwaysPublishes(t *testing.T) {
	e, f := newTestEngine(topParams())
	e.recalcQuote(f.clock.t)
	require.NotNil(t, e.LatestQuote())

	p := f.params.p
	p.Size = 2
	f.params.p = p
	f.clock.t = f.clock.t.Add(10 * time.Millisecond)
	e.recalcQuote(f.clock.t)
	assert.InDelta(t, 2.0, e.LatestQuote().Bid.Size, 1e-9, "size changes are never suppressed")
}

func TestPublicationGateSuppressesNoise(t *testing.T) {
	e, f := newTestEngine(topParams())
	e.recalcQuote(f.clock.t)
	require.Len(t, f.published, 1)

	// 输入不变的重复重算不再发布
	f.clock.t = f.clock.t.Add(time.Second)
	e.recalcQuote(f.clock.t)
	f.clock.t = f.clock.t.Add(time.Second)
	e.recalcQuote(f.clock.t)
	assert.Len(t, f.published, 1)
}

func TestNullQuotePublishedOnce(t *testing.T) {
	e, f := newTestEngine(topParams())
	e.recalcQuote(f.clock.t)
	require.Len(t, f.published, 1)

	f.fv.fv = nil
	e.recalcQuote(f.clock.t)
	e.recalcQuote(f.clock.t)
	assert.Len(t, f.published, 2, "withdrawal publishes once, repeats are gated")
	assert.Nil(t, f.published[1])
}
