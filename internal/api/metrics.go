package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client-side request instruments
type Metrics struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the API client metrics on reg.
// A nil registerer yields unregistered collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltmarket_api_requests_total",
				Help: "Total number of backend API requests",
			},
			[]string{"route", "method", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voltmarket_api_request_duration_seconds",
				Help:    "Backend API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	if reg == nil {
		return m, nil
	}

	if err := reg.Register(m.requestCounter); err != nil {
		existing, ok := alreadyRegistered(err).(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		m.requestCounter = existing
	}
	if err := reg.Register(m.requestLatency); err != nil {
		existing, ok := alreadyRegistered(err).(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		m.requestLatency = existing
	}
	return m, nil
}

// alreadyRegistered returns the collector a previous client registered, if any
func alreadyRegistered(err error) prometheus.Collector {
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return already.ExistingCollector
	}
	return nil
}

// observe records one request; status 0 means no response was received
func (m *Metrics) observe(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestCounter.WithLabelValues(route, method, label).Inc()
	m.requestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
