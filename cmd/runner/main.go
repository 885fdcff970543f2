package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"market-quoter-go/config"
	"market-quoter-go/eventloop"
	"market-quoter-go/ewma"
	"market-quoter-go/fairvalue"
	"market-quoter-go/gateway"
	"market-quoter-go/infrastructure/logger"
	"market-quoter-go/market"
	"market-quoter-go/metrics"
	"market-quoter-go/order"
	"market-quoter-go/position"
	"market-quoter-go/quoting"
	"market-quoter-go/safety"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	baseAmount := flag.Float64("baseAmount", 0, "初始基础币仓位")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zl, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zl.Close()

	params, err := cfg.Quoting.ToParameters()
	if err != nil {
		zl.Fatal("quoting config invalid", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := eventloop.New(nil)
	details := gateway.NewDetails(cfg.Venue.TickSize)
	books := gateway.NewMarketDataBroker()

	// 下单通道使用纸面撮合：真实场所的订单网关不在本仓库范围内。
	broker := gateway.NewPaperBroker(loop, books)

	repo := config.NewParametersRepository(params)
	quoter := order.NewQuoter(zl.Logger.Named("quoter"), loop.Clock(), broker, details)
	filtration := market.NewFiltration(loop, details, quoter, books)
	fv := fairvalue.NewEngine(loop.Clock(), filtration)
	indicator := ewma.NewCalculator(cfg.Quoting.EwmaAlpha, fv)
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

	mset := metrics.New(cfg.Venue.Symbol)
	metrics.Serve(cfg.Metrics.Addr)

	engine.Recalculated.On(mset.RecomputeTotal.Inc)
	engine.OnQuoteChanged(func(q *quoting.TwoSidedQuote) {
		quoter.Apply(q)
		mset.ObserveQuote(q)
		logQuote(zl.Logger, q)
	})

	// 成交直接计入仓位
	broker.OnTrade(func(t market.Trade) {
		r, _ := positions.LatestReport()
		if t.Side == market.Bid {
			r.BaseAmount += t.Size
			r.QuoteAmount -= t.Price * t.Size
		} else {
			r.BaseAmount -= t.Size
			r.QuoteAmount += t.Price * t.Size
		}
		r.Time = t.Time
		positions.Update(r)
	})
	broker.OnOrderUpdate(func(r order.Report) {
		switch {
		case r.Status == order.StatusComplete || r.Status == order.StatusCancelled:
			mset.OrdersCancelled.WithLabelValues(r.Side.String()).Inc()
		case r.Status == order.StatusWorking:
			mset.OrdersSent.WithLabelValues(r.Side.String()).Inc()
		}
	})

	// 配置热更新：新参数经校验后整体替换
	watcher, err := config.NewWatcher(zl.Logger.Named("config"), *cfgPath)
	if err != nil {
		zl.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
		watcher.Start(ctx, func(next config.AppConfig) {
			p, err := next.Quoting.ToParameters()
			if err != nil {
				zl.Warn("reloaded quoting config invalid", zap.Error(err))
				return
			}
			loop.Post(func() { repo.Update(p) })
		})
	}

	loop.Post(func() {
		positions.Update(position.Report{BaseAmount: *baseAmount, Time: time.Now()})
		safeties.Prime()
	})
	safeties.Start(ctx, loop)
	indicator.Start(ctx, loop, 10*time.Second)
	engine.Start(ctx)

	// 行情：websocket，断线退避重连
	ws := gateway.NewWSClient(zl.Logger.Named("ws"), cfg.Venue.WSEndpoint)
	if err := ws.SubscribeDepth(cfg.Venue.Symbol); err != nil {
		zl.Fatal("subscribe depth failed", zap.Error(err))
	}
	go func() {
		for ctx.Err() == nil {
			if err := ws.Run(ctx, loop, details, books); err != nil && ctx.Err() == nil {
				zl.Warn("market data stream ended, reconnecting", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
		}
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	zl.Info("quoter running",
		zap.String("symbol", cfg.Venue.Symbol),
		zap.String("mode", params.Mode.String()))

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		zl.Error("event loop stopped", zap.Error(err))
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}

func logQuote(zl *zap.Logger, q *quoting.TwoSidedQuote) {
	if q == nil {
		zl.Info("quote withdrawn")
		return
	}
	fields := []zap.Field{zap.Time("ts", q.Time)}
	if q.Bid != nil {
		fields = append(fields, zap.Float64("bid_px", q.Bid.Price), zap.Float64("bid_sz", q.Bid.Size))
	}
	if q.Ask != nil {
		fields = append(fields, zap.Float64("ask_px", q.Ask.Price), zap.Float64("ask_sz", q.Ask.Size))
	}
	zl.Info("quote published", fields...)
}
