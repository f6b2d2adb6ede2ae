package fake

import (
	"fmt"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "bbsim"

// Metrics are the counters updated by the simulated networks.
// Sent and Delivered count one unit per (message, target) pair.
type Metrics struct {
	Sent      metrics.Counter
	Delivered metrics.Counter
	Pending   metrics.Gauge
}

// NewDiscardMetrics returns metrics that are not recorded anywhere
func NewDiscardMetrics() *Metrics {
	return &Metrics{
		Sent:      discard.NewCounter(),
		Delivered: discard.NewCounter(),
		Pending:   discard.NewGauge(),
	}
}

// NewPrometheusMetrics returns metrics backed by prometheus collectors registered on reg
func NewPrometheusMetrics(reg prometheus.Registerer) (*Metrics, error) {
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "network",
		Name:      "messages_sent",
		Help:      "Number of messages sent, counted once per target.",
	}, nil)
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "network",
		Name:      "messages_delivered",
		Help:      "Number of messages delivered to their target.",
	}, nil)
	pending := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "network",
		Name:      "messages_pending",
		Help:      "Number of messages sent but not delivered yet.",
	}, nil)

	for _, c := range []prometheus.Collector{sent, delivered, pending} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register network metrics: %w", err)
		}
	}

	return &Metrics{
		Sent:      kitprometheus.NewCounter(sent),
		Delivered: kitprometheus.NewCounter(delivered),
		Pending:   kitprometheus.NewGauge(pending),
	}, nil
}
