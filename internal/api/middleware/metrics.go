package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/papertrail/papertrail-api/internal/api/middleware"

// Metrics holds the OpenTelemetry metrics instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	actionsMetered   metric.Int64Counter
	quotaRejections  metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with initialized instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	actionsMetered, err := meter.Int64Counter(
		"gateway.actions.metered",
		metric.WithDescription("Number of metered actions accounted"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	quotaRejections, err := meter.Int64Counter(
		"gateway.quota.rejections",
		metric.WithDescription("Number of requests rejected for exhausted quota"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		actionsMetered:   actionsMetered,
		quotaRejections:  quotaRejections,
	}, nil
}

// Middleware returns an HTTP middleware that records metrics for each request.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
			}
			m.requestsInFlight.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			defer m.requestsInFlight.Add(r.Context(), -1, metric.WithAttributes(attrs...))

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()

			attrs = append(attrs, attribute.String("http.status_code", strconv.Itoa(wrapped.statusCode)))
			if wrapped.statusCode >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			m.requestDuration.Record(r.Context(), duration, metric.WithAttributes(attrs...))
			m.requestTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
		})
	}
}

// RecordAction records one accounted metered action.
func (m *Metrics) RecordAction(action, plan string) {
	m.actionsMetered.Add(context.TODO(), 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("plan", plan),
	))
}

// RecordQuotaRejection records a request rejected for exhausted quota.
func (m *Metrics) RecordQuotaRejection(plan string) {
	m.quotaRejections.Add(context.TODO(), 1, metric.WithAttributes(
		attribute.String("plan", plan),
	))
}
