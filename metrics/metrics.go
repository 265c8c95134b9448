// Package metrics defines the Prometheus collectors recorded by the dispatch
// layer. A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDomain  = "domain_error"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
)

// Validation outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Collector groups the dispatch metrics.
type Collector struct {
	RouteTotal           *prometheus.CounterVec
	RouteDuration        *prometheus.HistogramVec
	ValidationTotal      *prometheus.CounterVec
	HandlerConstructions *prometheus.CounterVec
}

// Options configures metric names.
type Options struct {
	Namespace string
	Buckets   []float64
}

// New creates unregistered collectors. Register them with Register or
// Collectors.
func New(optFns ...func(o *Options)) *Collector {
	opts := Options{
		Namespace: "pantrymesh",
		Buckets:   prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Collector{
		RouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "router",
			Name:      "routes_total",
			Help:      "Dispatched requests by handler type and outcome.",
		}, []string{"handler_type", "outcome"}),
		RouteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: "router",
			Name:      "route_duration_seconds",
			Help:      "Time spent dispatching a request, including handler execution.",
			Buckets:   opts.Buckets,
		}, []string{"handler_type"}),
		ValidationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "validation",
			Name:      "results_total",
			Help:      "Validated generations by strictness level and outcome.",
		}, []string{"level", "outcome"}),
		HandlerConstructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "factory",
			Name:      "constructions_total",
			Help:      "Handler instances constructed by type.",
		}, []string{"handler_type"}),
	}
}

// Collectors returns every collector for registration.
func (c *Collector) Collectors() []prometheus.Collector {
	if c == nil {
		return nil
	}
	return []prometheus.Collector{c.RouteTotal, c.RouteDuration, c.ValidationTotal, c.HandlerConstructions}
}

// Register registers all collectors with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range c.Collectors() {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRoute records one dispatch.
func (c *Collector) ObserveRoute(handlerType, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.RouteTotal.WithLabelValues(handlerType, outcome).Inc()
	c.RouteDuration.WithLabelValues(handlerType).Observe(d.Seconds())
}

// ObserveValidation records one validation decision.
func (c *Collector) ObserveValidation(level string, valid bool) {
	if c == nil {
		return
	}
	outcome := OutcomeRejected
	if valid {
		outcome = OutcomeAccepted
	}
	c.ValidationTotal.WithLabelValues(level, outcome).Inc()
}

// ObserveConstruction records one handler construction.
func (c *Collector) ObserveConstruction(handlerType string) {
	if c == nil {
		return
	}
	c.HandlerConstructions.WithLabelValues(handlerType).Inc()
}
