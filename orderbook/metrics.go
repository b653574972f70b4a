package orderbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instrumentation is in-memory counter/gauge bookkeeping only — no
// network or disk I/O — so updating it from inside the book's critical
// section is safe.
var (
	tradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "trades_total",
		Help:      "Executed trades per symbol.",
	}, []string{"symbol"})

	ordersRestingTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "matchbook",
		Name:      "orders_resting",
		Help:      "Currently resting orders per symbol.",
	}, []string{"symbol"})

	bestBidGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "matchbook",
		Name:      "best_bid",
		Help:      "Best bid price per symbol (0 when the bid side is empty).",
	}, []string{"symbol"})

	bestAskGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "matchbook",
		Name:      "best_ask",
		Help:      "Best ask price per symbol (0 when the ask side is empty).",
	}, []string{"symbol"})
)

func (b *OrderBook) recordMetricsLocked() {
	ordersRestingTotal.WithLabelValues(b.symbol).Set(float64(len(b.orders)))

	if price, _, ok := b.bids.Best(); ok {
		bestBidGauge.WithLabelValues(b.symbol).Set(float64(price))
	} else {
		bestBidGauge.WithLabelValues(b.symbol).Set(0)
	}
	if price, _, ok := b.asks.Best(); ok {
		bestAskGauge.WithLabelValues(b.symbol).Set(float64(price))
	} else {
		bestAskGauge.WithLabelValues(b.symbol).Set(0)
	}
}
