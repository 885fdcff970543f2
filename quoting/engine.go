package quoting

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"market-quoter-go/eventloop"
	"market-quoter-go/events"
	"market-quoter-go/fairvalue"
	"market-quoter-go/market"
	"market-quoter-go/position"
	"market-quoter-go/safety"
)

// sizeEps 超过该值的量变动立即发布，不做防抖。
const sizeEps = 5e-3

// flickerWindow 收窄方向的价格变动在该时间内被抑制。
const flickerWindow = 300 * time.Millisecond

// recalcInterval 兜底重算周期，防止漏掉任何一路通知。
const recalcInterval = time.Second

// FilteredMarketSource 过滤后行情来源。
type FilteredMarketSource interface {
	Latest() *market.Market
	OnChange(func())
}

// FairValueSource 公允价来源。
type FairValueSource interface {
	Latest() *fairvalue.FairValue
	OnChange(func())
}

// ParamsSource 报价参数来源。
type ParamsSource interface {
	Latest() QuotingParameters
	OnChange(func())
}

// TradeSource 成交完成通知。
type TradeSource interface {
	OnTradeCompleted(func())
}

// Indicator 标量指标（均线）来源。
type Indicator interface {
	Latest() (float64, bool)
	OnChange(func())
}

// TargetPositionSource 目标仓位来源。
type TargetPositionSource interface {
	Latest() (float64, bool)
	OnChange(func())
}

// SafetySource 安全快照来源。
type SafetySource interface {
	Latest() (safety.Values, bool)
	OnChange(func())
}

// Engine 报价引擎：任一输入变化都触发重算，重算结果经防抖和
// 发布闸门后对外发出双边报价。
type Engine struct {
	log      *zap.Logger
	clock    eventloop.Clock
	loop     *eventloop.Loop
	sched    *eventloop.Scheduler
	registry *Registry

	details   market.TickSource
	markets   FilteredMarketSource
	fv        FairValueSource
	params    ParamsSource
	positions position.Broker
	ewma      Indicator
	target    TargetPositionSource
	safeties  SafetySource

	latest *TwoSidedQuote

	// QuoteChanged 发布闸门放行后的报价变化事件。
	QuoteChanged events.Evt[*TwoSidedQuote]

	// Recalculated 每轮重算触发一次，发布与否不论。
	Recalculated events.Signal
}

// Deps 引擎的全部协作方。
type Deps struct {
	Details   market.TickSource
	Markets   FilteredMarketSource
	FairValue FairValueSource
	Params    ParamsSource
	Trades    TradeSource
	Positions position.Broker
	Ewma      Indicator
	Target    TargetPositionSource
	Safeties  SafetySource
}

func NewEngine(log *zap.Logger, loop *eventloop.Loop, registry *Registry, d Deps) *Engine {
	e := &Engine{
		log:       log,
		clock:     loop.Clock(),
		loop:      loop,
		registry:  registry,
		details:   d.Details,
		markets:   d.Markets,
		fv:        d.FairValue,
		params:    d.Params,
		positions: d.Positions,
		ewma:      d.Ewma,
		target:    d.Target,
		safeties:  d.Safeties,
	}
	e.sched = eventloop.NewScheduler(loop, func() { e.recalcQuote(e.clock.Now()) })

	d.Markets.OnChange(e.sched.Schedule)
	d.Params.OnChange(e.sched.Schedule)
	d.Trades.OnTradeCompleted(e.sched.Schedule)
	d.Ewma.OnChange(e.sched.Schedule)
	d.Target.OnChange(e.sched.Schedule)
	d.Safeties.OnChange(e.sched.Schedule)
	return e
}

// Start 启动周期兜底重算。
func (e *Engine) Start(ctx context.Context) {
	e.loop.Every(ctx, recalcInterval, e.sched.Schedule)
}

// LatestQuote 最近发布的双边报价；停止报价时为 nil。
func (e *Engine) LatestQuote() *TwoSidedQuote { return e.latest }

func (e *Engine) OnQuoteChanged(h func(*TwoSidedQuote)) {
	e.QuoteChanged.On(h)
}

// setLatestQuote 发布闸门：和上一次发布值相比无实质差异就不动。
func (e *Engine) setLatestQuote(val *TwoSidedQuote) {
	if !quotesChanged(e.latest, val, e.details.MinTickIncrement()) {
		return
	}
	e.latest = val
	e.QuoteChanged.Trigger(val)
}

func (e *Engine) recalcQuote(t time.Time) {
	e.Recalculated.Trigger()

	fv := e.fv.Latest()
	if fv == nil {
		e.setLatestQuote(nil)
		return
	}

	filtered := e.markets.Latest()
	if filtered == nil {
		e.setLatestQuote(nil)
		return
	}

	gq, ok := e.computeQuote(filtered, fv)
	if !ok {
		e.setLatestQuote(nil)
		return
	}

	e.setLatestQuote(&TwoSidedQuote{
		Bid:  e.quotesAreSame(gq.bidQuote(), e.latest, market.Bid),
		Ask:  e.quotesAreSame(gq.askQuote(), e.latest, market.Ask),
		Time: t,
	})
}

// computeQuote 风格产出候选报价后依次施加：均线保护、仓位回归、
// ping/pong 地板、成交频率限制、取整。
func (e *Engine) computeQuote(filtered *market.Market, fv *fairvalue.FairValue) (GeneratedQuote, bool) {
	params := e.params.Latest()
	minTick := e.details.MinTickIncrement()
	input := QuoteInput{Market: filtered, FV: fv, Params: params, MinTickIncrement: minTick}

	gq, ok := e.registry.Get(params.Mode).GenerateQuote(input)
	if !ok {
		return GeneratedQuote{}, false
	}

	if params.EwmaProtection {
		if v, has := e.ewma.Latest(); has {
			gq = applyEwmaProtection(gq, v)
		}
	}

	target, hasTarget := e.target.Latest()
	if !hasTarget {
		e.log.Warn("cannot compute a quote since no target position exists")
		return GeneratedQuote{}, false
	}

	latestPosition, hasPosition := e.positions.LatestReport()
	if !hasPosition {
		return GeneratedQuote{}, false
	}
	gq = applyPositionRebalancing(gq, latestPosition.TotalBase(), target, params)

	sv, hasSafety := e.safeties.Latest()
	if !hasSafety {
		return GeneratedQuote{}, false
	}
	if params.Mode == PingPong {
		gq = applyPingPong(gq, sv, params.Width)
	}
	gq = applyTradeRateLimit(gq, sv, params.TradesPerMinute)

	gq = roundQuote(gq, minTick)
	return gq, true
}

// applyEwmaProtection 防止报价穿过趋势指标：均线高于卖价时抬高卖价，
// 低于买价时压低买价。
func applyEwmaProtection(gq GeneratedQuote, value float64) GeneratedQuote {
	if gq.Ask.Present && value > gq.Ask.Price {
		gq.Ask.Price = value
	}
	if gq.Bid.Present && value < gq.Bid.Price {
		gq.Bid.Price = value
	}
	return gq
}

// applyPositionRebalancing 仓位偏离目标超过 divergence 时砍掉加剧偏离的
// 一边；开启激进回归时放大另一边的量。边界值 total == target ± divergence
// 不触发。
func applyPositionRebalancing(gq GeneratedQuote, total, target float64, params QuotingParameters) GeneratedQuote {
	if total < target-params.PositionDivergence {
		gq.Ask = SideQuote{}
		if params.AggressivePositionRebalancing && gq.Bid.Present {
			gq.Bid.Size = math.Min(params.APRMultiplier*params.Size, target-total)
		}
	}

	if total > target+params.PositionDivergence {
		gq.Bid = SideQuote{}
		if params.AggressivePositionRebalancing && gq.Ask.Present {
			gq.Ask.Size = math.Min(params.APRMultiplier*params.Size, total-target)
		}
	}
	return gq
}

// applyPingPong 卖价不得低于 buyPing + width，买价不得高于 sellPong - width。
func applyPingPong(gq GeneratedQuote, sv safety.Values, width float64) GeneratedQuote {
	if gq.Ask.Present && sv.BuyPing > 0 && gq.Ask.Price < sv.BuyPing+width {
		gq.Ask.Price = sv.BuyPing + width
	}
	if gq.Bid.Present && sv.SellPong > 0 && gq.Bid.Price > sv.SellPong-width {
		gq.Bid.Price = sv.SellPong - width
	}
	return gq
}

// applyTradeRateLimit 单方向成交频率超标就停掉该方向。
func applyTradeRateLimit(gq GeneratedQuote, sv safety.Values, tradesPerMinute float64) GeneratedQuote {
	if sv.Sell > tradesPerMinute {
		gq.Ask = SideQuote{}
	}
	if sv.Buy > tradesPerMinute {
		gq.Bid = SideQuote{}
	}
	return gq
}

// roundQuote 价格按方向取整到 tick，卖价不得低于买价加一个 tick；
// 量向下取整到 tick，有价必有量。
func roundQuote(gq GeneratedQuote, minTick float64) GeneratedQuote {
	if gq.Bid.Present {
		gq.Bid.Price = roundDown(gq.Bid.Price, minTick)
		gq.Bid.Price = math.Max(0, gq.Bid.Price)
	}

	if gq.Ask.Present {
		gq.Ask.Price = roundUp(gq.Ask.Price, minTick)
		if gq.Bid.Present {
			gq.Ask.Price = math.Max(gq.Bid.Price+minTick, gq.Ask.Price)
		}
	}

	if gq.Ask.Present {
		gq.Ask.Size = math.Max(minTick, roundDown(gq.Ask.Size, minTick))
	}
	if gq.Bid.Present {
		gq.Bid.Size = math.Max(minTick, roundDown(gq.Bid.Size, minTick))
	}
	return gq
}

// roundEps 吸收除法带来的浮点误差，避免 1/0.01 落在 100 之下。
const roundEps = 1e-9

func roundDown(v, tick float64) float64 {
	return math.Floor(v/tick+roundEps) * tick
}

func roundUp(v, tick float64) float64 {
	return math.Ceil(v/tick-roundEps) * tick
}

// quotesAreSame 单边防抖：亚 tick 抖动忽略；量变超阈值立即放行；
// 收窄方向的变动在 flickerWindow 内被抑制。
func (e *Engine) quotesAreSame(newQ *Quote, prev *TwoSidedQuote, s market.Side) *Quote {
	if newQ == nil {
		return nil
	}
	if prev == nil {
		return newQ
	}

	previousQ := prev.Bid
	if s == market.Ask {
		previousQ = prev.Ask
	}
	if previousQ == nil {
		return newQ
	}

	if math.Abs(newQ.Size-previousQ.Size) > sizeEps {
		return newQ
	}
	if math.Abs(newQ.Price-previousQ.Price) < e.details.MinTickIncrement() {
		return previousQ
	}

	quoteWasWidened := true
	if s == market.Bid && previousQ.Price < newQ.Price {
		quoteWasWidened = false
	}
	if s == market.Ask && previousQ.Price > newQ.Price {
		quoteWasWidened = false
	}

	if !quoteWasWidened && e.clock.Now().Sub(prev.Time) < flickerWindow {
		return previousQ
	}
	return newQ
}

// quoteChanged 单边是否有实质变化：价差超过一个 tick 或量差超过 0.001。
func quoteChanged(o, n *Quote, tick float64) bool {
	if (o == nil) != (n == nil) {
		return true
	}
	if o == nil && n == nil {
		return false
	}
	if math.Abs(o.Price-n.Price) > tick {
		return true
	}
	return math.Abs(o.Size-n.Size) > 1e-3
}

func quotesChanged(o, n *TwoSidedQuote, tick float64) bool {
	if (o == nil) != (n == nil) {
		return true
	}
	if o == nil && n == nil {
		return false
	}
	return quoteChanged(o.Bid, n.Bid, tick) || quoteChanged(o.Ask, n.Ask, tick)
}
