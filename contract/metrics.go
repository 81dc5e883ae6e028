package contract

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "contract"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of successful transitions, by action.
	Operations metrics.Counter
	// Number of failed transitions, by action.
	OperationFailures metrics.Counter

	// Number of stored asks.
	OpenAsks metrics.Gauge
	// Number of stored bids.
	OpenBids metrics.Gauge

	// Total base units settled by matches.
	MatchedBase metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Operations: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "operations_total",
			Help:      "Number of successful transitions.",
		}, append(labels, "action")).With(labelsAndValues...),
		OperationFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "operation_failures_total",
			Help:      "Number of failed transitions.",
		}, append(labels, "action")).With(labelsAndValues...),
		OpenAsks: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "open_asks",
			Help:      "Number of stored asks.",
		}, labels).With(labelsAndValues...),
		OpenBids: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "open_bids",
			Help:      "Number of stored bids.",
		}, labels).With(labelsAndValues...),
		MatchedBase: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "matched_base_total",
			Help:      "Total base units settled by matches.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Operations:        discard.NewCounter(),
		OperationFailures: discard.NewCounter(),
		OpenAsks:          discard.NewGauge(),
		OpenBids:          discard.NewGauge(),
		MatchedBase:       discard.NewCounter(),
	}
}
