// Package metrics exposes the Prometheus instruments of the tracking service.
// Every method is safe on a nil *Metrics, which disables collection.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracking"

// Delivery outcomes.
const (
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
	DeliveryDropped   = "dropped"
)

type Metrics struct {
	registry *prometheus.Registry

	predictions        *prometheus.CounterVec   // stage, confidence
	predictionDuration *prometheus.HistogramVec // stage
	deliveries         *prometheus.CounterVec   // outcome
	cacheRequests      *prometheus.CounterVec   // result: hit/miss
	cacheErrors        *prometheus.CounterVec   // op
	subscriptions      *prometheus.GaugeVec     // kind: tokens/connections/subscriptions
}

// New creates the instruments on a private registry together with the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eta",
			Name:      "predictions_total",
			Help:      "ETA predictions by stage and confidence (fallback means the oracle was not used)",
		}, []string{"stage", "confidence"}),

		predictionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "eta",
			Name:      "prediction_duration_seconds",
			Help:      "Wall clock time of an ETA prediction including the oracle call",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),

		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "deliveries_total",
			Help:      "Event batches handed to subscribers by outcome",
		}, []string{"outcome"}),

		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Read-through cache lookups by result",
		}, []string{"result"}),

		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Cache backend errors absorbed by the adapter",
		}, []string{"op"}),

		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "subscriptions",
			Help:      "Current size of the subscription registry",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.predictions,
		m.predictionDuration,
		m.deliveries,
		m.cacheRequests,
		m.cacheErrors,
		m.subscriptions,
	)

	return m
}

// Registry returns the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObservePrediction(stage string, confidence string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(stage, confidence).Inc()
	m.predictionDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordDelivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCacheError(op string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) SetSubscriptions(tokens, connections, subscriptions int) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues("tokens").Set(float64(tokens))
	m.subscriptions.WithLabelValues("connections").Set(float64(connections))
	m.subscriptions.WithLabelValues("subscriptions").Set(float64(subscriptions))
}
