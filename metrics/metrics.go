// Package metrics provides Prometheus metrics for the quoting core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"market-quoter-go/quoting"
)

// Set 报价核心的指标集合。
type Set struct {
	RecomputeTotal  prometheus.Counter
	QuotesPublished prometheus.Counter
	OrdersSent      *prometheus.CounterVec
	OrdersCancelled *prometheus.CounterVec
	QuotePrice      *prometheus.GaugeVec
	QuoteSize       *prometheus.GaugeVec
}

func New(symbol string) *Set {
	labels := prometheus.Labels{"symbol": symbol}
	return &Set{
		RecomputeTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quoter_recompute_total", Help: "报价重算次数", ConstLabels: labels,
		}),
		QuotesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quoter_quotes_published_total", Help: "发布的双边报价次数", ConstLabels: labels,
		}),
		OrdersSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quoter_orders_sent_total", Help: "发出的订单数", ConstLabels: labels,
		}, []string{"side"}),
		OrdersCancelled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quoter_orders_cancelled_total", Help: "撤销的订单数", ConstLabels: labels,
		}, []string{"side"}),
		QuotePrice: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quoter_quote_price", Help: "当前发布的报价价格", ConstLabels: labels,
		}, []string{"side"}),
		QuoteSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quoter_quote_size", Help: "当前发布的报价数量", ConstLabels: labels,
		}, []string{"side"}),
	}
}

// ObserveQuote 记录一次报价发布。
func (s *Set) ObserveQuote(q *quoting.TwoSidedQuote) {
	s.QuotesPublished.Inc()
	s.observeSide("bid", quoteOf(q, true))
	s.observeSide("ask", quoteOf(q, false))
}

func quoteOf(q *quoting.TwoSidedQuote, bid bool) *quoting.Quote {
	if q == nil {
		return nil
	}
	if bid {
		return q.Bid
	}
	return q.Ask
}

func (s *Set) observeSide(side string, q *quoting.Quote) {
	if q == nil {
		s.QuotePrice.WithLabelValues(side).Set(0)
		s.QuoteSize.WithLabelValues(side).Set(0)
		return
	}
	s.QuotePrice.WithLabelValues(side).Set(q.Price)
	s.QuoteSize.WithLabelValues(side).Set(q.Size)
}

// Serve 启动 Prometheus 指标服务。
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
