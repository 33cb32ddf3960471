// Package metrics provides Prometheus metrics and OpenTelemetry tracing for the films service.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "films"

// Ingest result labels.
const (
	IngestIndexed   = "indexed"
	IngestMalformed = "malformed"
	IngestFailed    = "failed"
)

// Metrics holds the films Prometheus collectors.
type Metrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
	IngestRecords *prometheus.CounterVec
	BulkBatchSize prometheus.Histogram

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// Provider bundles the tracer, the collectors and the registry serving /metrics.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers the films collectors, plus Go and process collectors,
// on a fresh registry.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(tracerName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

func initMetrics(factory promauto.Factory) *Metrics {
	return &Metrics{
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "films_backend_query_duration_seconds",
			Help:    "Elasticsearch round trip duration per films operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),

		QueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "films_backend_query_errors_total",
			Help: "Failed Elasticsearch round trips per films operation",
		}, []string{"operation"}),

		IngestRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "films_ingest_records_total",
			Help: "Records read by bulk population, by result (indexed, malformed, failed)",
		}, []string{"result"}),

		BulkBatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "films_ingest_bulk_batch_size",
			Help:    "Documents per _bulk request",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2500},
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "films_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "films_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "films_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// RecordQuery records one backend round trip. A nil Provider is a no-op.
func (p *Provider) RecordQuery(operation string, duration time.Duration, err error) {
	if p == nil {
		return
	}
	p.Metrics.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		p.Metrics.QueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordIngest adds n records under result. A nil Provider is a no-op.
func (p *Provider) RecordIngest(result string, n int) {
	if p == nil || n == 0 {
		return
	}
	p.Metrics.IngestRecords.WithLabelValues(result).Add(float64(n))
}

// RecordBulkBatch observes the size of one _bulk request.
func (p *Provider) RecordBulkBatch(size int) {
	if p == nil {
		return
	}
	p.Metrics.BulkBatchSize.Observe(float64(size))
}

// TrackRequest marks a request as in flight and returns a func that records
// its outcome. route is the matched route template, not the raw path.
func (p *Provider) TrackRequest(method string) func(route string, status int) {
	if p == nil {
		return func(string, int) {}
	}

	start := time.Now()
	p.Metrics.HTTPInFlight.Inc()

	return func(route string, status int) {
		p.Metrics.HTTPInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		p.Metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		p.Metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// StartSpan starts a span named "films.<operation>". Works on a nil Provider
// by falling back to the global tracer. The caller ends the span.
//
//nolint:spancheck // caller ends the span
func (p *Provider) StartSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	if p != nil && p.Tracer != nil {
		tracer = p.Tracer
	}
	return tracer.Start(ctx, "films."+operation, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
