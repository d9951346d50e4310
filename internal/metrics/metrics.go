// Package metrics counts wallet operations for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Recorder receives one observation per completed operation.
type Recorder interface {
	Observe(op, outcome string, amount decimal.Decimal, took time.Duration)
}

// Prometheus implements Recorder with counters and a latency histogram.
type Prometheus struct {
	ops      *prometheus.CounterVec
	volume   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheus registers the wallet collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "operations_total",
			Help:      "Wallet operations by type and outcome.",
		}, []string{"op", "outcome"}),
		volume: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "committed_amount_total",
			Help:      "Sum of committed amounts by operation.",
		}, []string{"op"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wallet",
			Name:      "operation_duration_seconds",
			Help:      "Wallet operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

// Observe records one operation. outcome is "committed" or an error kind name.
func (p *Prometheus) Observe(op, outcome string, amount decimal.Decimal, took time.Duration) {
	p.ops.WithLabelValues(op, outcome).Inc()
	p.duration.WithLabelValues(op).Observe(took.Seconds())
	if outcome == OutcomeCommitted {
		p.volume.WithLabelValues(op).Add(amount.InexactFloat64())
	}
}

// OutcomeCommitted labels successful operations.
const OutcomeCommitted = "committed"

// Nop discards observations.
type Nop struct{}

func (Nop) Observe(string, string, decimal.Decimal, time.Duration) {}
