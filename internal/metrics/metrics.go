// Package metrics exposes Prometheus instrumentation for message routing
// and tool execution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Message metrics
	MessagesReceivedTotal *prometheus.CounterVec
	MessagesRejectedTotal *prometheus.CounterVec

	// Tool metrics
	ToolExecutionsTotal   *prometheus.CounterVec
	ToolExecutionDuration *prometheus.HistogramVec

	// Gateway metrics
	GatewayRequestsTotal      *prometheus.CounterVec
	NotificationRetriesTotal  prometheus.Counter
	NotificationFailuresTotal prometheus.Counter

	// Worker pool metrics
	PoolTasksSubmittedTotal *prometheus.CounterVec
	PoolOverflowsTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		MessagesReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_received_total",
				Help: "Total number of webhook messages accepted for routing",
			},
			[]string{"content_type"},
		),
		MessagesRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_rejected_total",
				Help: "Total number of webhook messages rejected before dispatch",
			},
			[]string{"reason"},
		),

		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions by terminal status",
			},
			[]string{"tool", "status"},
		),
		ToolExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_execution_duration_seconds",
				Help:    "Duration of synchronous tool execution waits in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),

		GatewayRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total number of outbound gateway requests",
			},
			[]string{"endpoint", "outcome"},
		),
		NotificationRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notification_retries_total",
				Help: "Total number of outbound notification retry attempts",
			},
		),
		NotificationFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notification_failures_total",
				Help: "Total number of notifications that exhausted all retries",
			},
		),

		PoolTasksSubmittedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pool_tasks_submitted_total",
				Help: "Total number of tasks submitted to worker pools",
			},
			[]string{"pool"},
		),
		PoolOverflowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pool_overflows_total",
				Help: "Total number of pool submissions that hit a full queue",
			},
			[]string{"pool"},
		),
	}

	registry.MustRegister(
		m.MessagesReceivedTotal,
		m.MessagesRejectedTotal,
		m.ToolExecutionsTotal,
		m.ToolExecutionDuration,
		m.GatewayRequestsTotal,
		m.NotificationRetriesTotal,
		m.NotificationFailuresTotal,
		m.PoolTasksSubmittedTotal,
		m.PoolOverflowsTotal,
	)

	return m
}

// MessageReceived records an accepted webhook message.
func (m *Metrics) MessageReceived(contentType string) {
	m.MessagesReceivedTotal.WithLabelValues(contentType).Inc()
}

// MessageRejected records a rejected webhook message.
func (m *Metrics) MessageRejected(reason string) {
	m.MessagesRejectedTotal.WithLabelValues(reason).Inc()
}

// ToolExecution records a tool execution outcome and its synchronous wait
// duration.
func (m *Metrics) ToolExecution(toolName string, status string, duration time.Duration) {
	m.ToolExecutionsTotal.WithLabelValues(toolName, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(duration.Seconds())
}

// GatewayRequest records an outbound gateway request by endpoint and outcome.
func (m *Metrics) GatewayRequest(endpoint, outcome string) {
	m.GatewayRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// NotificationRetry records a failed notification send that will be retried.
func (m *Metrics) NotificationRetry() {
	m.NotificationRetriesTotal.Inc()
}

// NotificationFailure records a notification that exhausted all retries.
func (m *Metrics) NotificationFailure() {
	m.NotificationFailuresTotal.Inc()
}

// TaskSubmitted records a task handed to a worker pool.
func (m *Metrics) TaskSubmitted(pool string) {
	m.PoolTasksSubmittedTotal.WithLabelValues(pool).Inc()
}

// TaskOverflowed records a pool submission that found the queue full.
func (m *Metrics) TaskOverflowed(pool string) {
	m.PoolOverflowsTotal.WithLabelValues(pool).Inc()
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
