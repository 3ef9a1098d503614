// Package metrics exposes lending and consistency counters in Prometheus format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/library/internal/services"
)

const namespace = "library"

// Collector owns a private registry so tests and multiple instances never
// collide on the global default registerer.
type Collector struct {
	registry *prometheus.Registry

	loansCreated        prometheus.Counter
	loansReturned       prometheus.Counter
	loansRejected       *prometheus.CounterVec
	inconsistencies     *prometheus.CounterVec
	openInconsistencies *prometheus.GaugeVec
	lastCheck           prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		loansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_created_total",
			Help:      "Loans successfully created.",
		}),
		loansReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_returned_total",
			Help:      "Loans marked returned.",
		}),
		loansRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_rejected_total",
			Help:      "Loan requests refused, by reason.",
		}, []string{"reason"}),
		inconsistencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inconsistencies_total",
			Help:      "Catalog/loan disagreements raised by lending operations, by kind.",
		}, []string{"kind"}),
		openInconsistencies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_inconsistencies",
			Help:      "Disagreements found by the most recent consistency check, by kind.",
		}, []string{"kind"}),
		lastCheck: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consistency_check_timestamp_seconds",
			Help:      "Unix time of the most recent consistency check.",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.loansCreated,
		c.loansReturned,
		c.loansRejected,
		c.inconsistencies,
		c.openInconsistencies,
		c.lastCheck,
	)
	return c
}

func (c *Collector) LoanCreated() {
	c.loansCreated.Inc()
}

func (c *Collector) LoanReturned() {
	c.loansReturned.Inc()
}

func (c *Collector) LoanRejected(reason string) {
	c.loansRejected.WithLabelValues(reason).Inc()
}

// Signal counts an inconsistency raised while lending.
func (c *Collector) Signal(_ context.Context, issue services.Inconsistency) {
	c.inconsistencies.WithLabelValues(string(issue.Kind)).Inc()
}

// ObserveReport replaces the open-inconsistency gauges with the report's counts.
func (c *Collector) ObserveReport(report services.ConsistencyReport, at time.Time) {
	c.openInconsistencies.Reset()
	for _, kind := range services.InconsistencyKinds() {
		c.openInconsistencies.WithLabelValues(string(kind)).Set(0)
	}
	for _, issue := range report.Issues {
		c.openInconsistencies.WithLabelValues(string(issue.Kind)).Inc()
	}
	c.lastCheck.Set(float64(at.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
