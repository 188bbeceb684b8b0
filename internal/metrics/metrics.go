// Package metrics exposes Prometheus instrumentation for the
// backtest engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	eventsProcessed  prometheus.Counter
	eventsMatched    prometheus.Counter
	tradesSimulated  prometheus.Counter
	priceLookups     *prometheus.CounterVec
}

// NewRegistry creates a metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalyst_backtests_total",
				Help: "Total number of backtests by final status",
			},
			[]string{"status"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalyst_backtest_duration_seconds",
				Help:    "Backtest duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
			},
		),
		eventsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "catalyst_events_processed_total",
				Help: "Events loaded from the event store across all runs",
			},
		),
		eventsMatched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "catalyst_events_matched_total",
				Help: "Events with resolvable prices fed into simulation",
			},
		),
		tradesSimulated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "catalyst_trades_simulated_total",
				Help: "Trades opened during simulation across all runs",
			},
		),
		priceLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalyst_price_lookups_total",
				Help: "Price source lookups by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.eventsProcessed)
	reg.MustRegister(r.eventsMatched)
	reg.MustRegister(r.tradesSimulated)
	reg.MustRegister(r.priceLookups)

	return r
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string, duration float64) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(duration)
}

// RecordEvents records event counters for one run.
func (r *Registry) RecordEvents(processed, matched int) {
	r.eventsProcessed.Add(float64(processed))
	r.eventsMatched.Add(float64(matched))
}

// RecordTrades records the trade count of one run.
func (r *Registry) RecordTrades(count int) {
	r.tradesSimulated.Add(float64(count))
}

// RecordPriceLookup records one price source lookup outcome.
func (r *Registry) RecordPriceLookup(outcome string) {
	r.priceLookups.WithLabelValues(outcome).Inc()
}
