package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics holds the collectors exposed on /metrics
type metrics struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	duration        prometheus.Histogram
	requestErrors   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "threat_filter_classifications_total",
			Help: "Total number of messages classified, by verdict label and source",
		}, []string{"label", "source"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "threat_filter_classification_duration_seconds",
			Help:    "Time spent classifying a request",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "threat_filter_request_errors_total",
			Help: "Total number of rejected API requests, by HTTP status",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.classifications,
		m.duration,
		m.requestErrors,
		collectors.NewGoCollector(),
	)
	return m
}
