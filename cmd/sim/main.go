// 合成行情驱动整条报价管线：随机游走的深度快照灌入纸面场所，
// 把发布的报价流打印出来。
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"market-quoter-go/config"
	"market-quoter-go/eventloop"
	"market-quoter-go/ewma"
	"market-quoter-go/fairvalue"
	"market-quoter-go/gateway"
	"market-quoter-go/infrastructure/logger"
	"market-quoter-go/market"
	"market-quoter-go/order"
	"market-quoter-go/position"
	"market-quoter-go/quoting"
	"market-quoter-go/safety"
)

func main() {
	mid := flag.Float64("mid", 100, "合成行情初始中间价")
	tick := flag.Float64("tick", 0.01, "最小价格步进")
	interval := flag.Duration("interval", 100*time.Millisecond, "行情推送周期")
	duration := flag.Duration("duration", 30*time.Second, "运行时长")
	mode := flag.String("mode", "top", "报价风格")
	flag.Parse()

	zl, err := logger.New(logger.Config{Level: "info", Outputs: []string{"stdout"}, Format: "console"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Close()

	qc := config.QuotingConfig{
		Mode:               *mode,
		Width:              0.1,
		Size:               1,
		StepOverSize:       0.05,
		PositionDivergence: 50,
		TradesPerMinute:    20,
		TargetBasePosition: 0,
	}
	params, err := qc.ToParameters()
	if err != nil {
		zl.Fatal("params", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	loop := eventloop.New(nil)
	details := gateway.NewDetails(*tick)
	books := gateway.NewMarketDataBroker()
	broker := gateway.NewPaperBroker(loop, books)
	repo := config.NewParametersRepository(params)
	quoter := order.NewQuoter(zl.Logger.Named("quoter"), loop.Clock(), broker, details)
	filtration := market.NewFiltration(loop, details, quoter, books)
	fv := fairvalue.NewEngine(loop.Clock(), filtration)
	indicator := ewma.NewCalculator(0, fv)
	safeties := safety.NewCalculator(loop.Clock(), broker)
	positions := position.NewStaticBroker()
	target := position.NewTargetManager(repo)

	engine := quoting.NewEngine(zl.Logger.Named("engine"), loop, quoting.DefaultRegistry(), quoting.Deps{
		Details:   details,
		Markets:   filtration,
		FairValue: fv,
		Params:    repo,
		Trades:    broker,
		Positions: positions,
		Ewma:      indicator,
		Target:    target,
		Safeties:  safeties,
	})

	engine.OnQuoteChanged(func(q *quoting.TwoSidedQuote) {
		quoter.Apply(q)
		if q == nil {
			zl.Info("quote withdrawn")
			return
		}
		fields := []zap.Field{}
		if q.Bid != nil {
			fields = append(fields, zap.Float64("bid", q.Bid.Price))
		}
		if q.Ask != nil {
			fields = append(fields, zap.Float64("ask", q.Ask.Price))
		}
		zl.Info("quote", fields...)
	})
	broker.OnTrade(func(t market.Trade) {
		zl.Info("fill", zap.String("side", t.Side.String()),
			zap.Float64("px", t.Price), zap.Float64("sz", t.Size))
		r, _ := positions.LatestReport()
		if t.Side == market.Bid {
			r.BaseAmount += t.Size
		} else {
			r.BaseAmount -= t.Size
		}
		positions.Update(r)
	})

	loop.Post(func() {
		details.SetStatus(gateway.Connected)
		positions.Update(position.Report{Time: time.Now()})
		safeties.Prime()
	})
	safeties.Start(ctx, loop)
	indicator.Start(ctx, loop, time.Second)
	engine.Start(ctx)

	// 随机游走行情源
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	price := *mid
	loop.Every(ctx, *interval, func() {
		price += (rng.Float64() - 0.5) * 10 * *tick
		book := market.NewOrderBook()
		bids := map[float64]float64{}
		asks := map[float64]float64{}
		for i := 1; i <= 5; i++ {
			bids[round(price-float64(i)**tick, *tick)] = rng.Float64() * 2
			asks[round(price+float64(i)**tick, *tick)] = rng.Float64() * 2
		}
		book.ApplyDelta(bids, asks)
		books.SetBook(book.Snapshot(time.Now()))
	})

	_ = loop.Run(ctx)
}

func round(v, tick float64) float64 {
	return math.Round(v/tick) * tick
}
