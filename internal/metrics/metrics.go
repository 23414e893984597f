// Package metrics instruments the console's refresh and transition paths
// with Prometheus counters and latency histograms.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ConsoleMetrics struct {
	Refreshes   *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	StoreCalls  *prometheus.HistogramVec
}

func NewConsoleMetrics() *ConsoleMetrics {
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "console",
		Name:      "refreshes_total",
		Help:      "Refresh operations by target and outcome.",
	}, []string{"target", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "console",
		Name:      "transitions_total",
		Help:      "Order status transition requests by target status and outcome.",
	}, []string{"to", "outcome"})
	storeCalls := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookstore",
		Subsystem: "console",
		Name:      "store_call_duration_ms",
		Help:      "Order store round-trip latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"op"})

	prometheus.MustRegister(refreshes, transitions, storeCalls)
	return &ConsoleMetrics{Refreshes: refreshes, Transitions: transitions, StoreCalls: storeCalls}
}

// ObserveRefresh records one refresh outcome. Nil receivers are no-ops so
// callers without metrics wiring (tests, the one-shot CLI) stay clean.
func (m *ConsoleMetrics) ObserveRefresh(target, outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(target, outcome).Inc()
}

func (m *ConsoleMetrics) ObserveTransition(to, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(to, outcome).Inc()
}

func (m *ConsoleMetrics) ObserveStoreCall(op string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreCalls.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
