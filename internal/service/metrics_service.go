package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	accessDecisions *prometheus.CounterVec
	pickupVerify    *prometheus.CounterVec
	pickupIssued    prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	accessDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_decisions_total",
		Help: "Authorization decisions by outcome",
	}, []string{"outcome"})

	pickupVerify := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pickup_verifications_total",
		Help: "Pickup code verification attempts by result",
	}, []string{"result"})

	pickupIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pickup_codes_issued_total",
		Help: "Total pickup codes issued",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, accessDecisions, pickupVerify, pickupIssued, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		accessDecisions: accessDecisions,
		pickupVerify:    pickupVerify,
		pickupIssued:    pickupIssued,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAccessDecision counts an authorization outcome ("allow" or "deny").
func (m *MetricsService) RecordAccessDecision(allowed bool) {
	if m == nil {
		return
	}
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.accessDecisions.WithLabelValues(outcome).Inc()
}

// RecordPickupVerification counts a verification result ("success" or "failure").
func (m *MetricsService) RecordPickupVerification(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.pickupVerify.WithLabelValues(result).Inc()
}

// AddPickupCodesIssued counts freshly issued codes.
func (m *MetricsService) AddPickupCodesIssued(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pickupIssued.Add(float64(n))
}
