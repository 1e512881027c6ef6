package oteladapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// MetricsCollector implements both datalayer.MetricsCollector and datalayer.ContextualMetricsCollector
// using OpenTelemetry metrics. It provides automatic metric creation and caching for optimal performance.
type MetricsCollector struct {
	meter      metric.Meter
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

// NewMetricsCollector creates a new OpenTelemetry metrics collector with the provided meter.
// Metric instruments are created on-demand and cached for reuse.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

// RecordDuration records a duration metric with labels.
func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	histogram := m.getOrCreateHistogram(metricName)
	if histogram == nil {
		return // Metric creation failed, skip recording
	}

	attrs := labelsToAttributes(labels)
	histogram.Record(context.TODO(), duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementCounter increments a counter metric with labels.
func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	counter := m.getOrCreateCounter(metricName)
	if counter == nil {
		return // Metric creation failed, skip recording
	}

	attrs := labelsToAttributes(labels)
	counter.Add(context.TODO(), 1, metric.WithAttributes(attrs...))
}

// RecordValue records a gauge value metric with labels.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	gauge := m.getOrCreateGauge(metricName)
	if gauge == nil {
		return // Metric creation failed, skip recording
	}

	attrs := labelsToAttributes(labels)
	gauge.Record(context.TODO(), value, metric.WithAttributes(attrs...))
}

// RecordDurationContext records a duration metric with context for trace correlation.
func (m *MetricsCollector) RecordDurationContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	labels map[string]string,
) {
	histogram := m.getOrCreateHistogram(metricName)
	if histogram == nil {
		return // Metric creation failed, skip recording
	}

	attrs := labelsToAttributes(labels)
	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementCounterContext increments a counter metric with context for trace correlation.
func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	counter := m.getOrCreateCounter(metricName)
	if counter == nil {
		return // Metric creation failed, skip recording
	}

	attrs := labelsToAttributes(labels)
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordValueContext records a gauge value metric with context for trace correlation.
func (m *MetricsCollector) RecordValueContext(
	ctx context.Context,
	metricName string,
	value float64,
	labels map[string]string,
) {
	gauge := m.getOrCreateGauge(metricName)
	if gauge == nil {
		return // Metric creation failed, skip recording
	}

	attrs := labelsToAttributes(labels)
	gauge.Record(ctx, value, metric.WithAttributes(attrs...))
}

// getOrCreateHistogram gets or creates a histogram metric instrument.
func (m *MetricsCollector) getOrCreateHistogram(name string) metric.Float64Histogram {
	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}

	histogram, err := m.meter.Float64Histogram(
		name,
		metric.WithDescription("Data layer operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil // Failed to create histogram, return nil to skip recording
	}

	m.histograms[name] = histogram

	return histogram
}

// getOrCreateCounter gets or creates a counter metric instrument.
func (m *MetricsCollector) getOrCreateCounter(name string) metric.Int64Counter {
	if counter, exists := m.counters[name]; exists {
		return counter
	}

	counter, err := m.meter.Int64Counter(
		name,
		metric.WithDescription("Data layer operation counter"),
	)
	if err != nil {
		return nil // Failed to create counter, return nil to skip recording
	}

	m.counters[name] = counter

	return counter
}

// getOrCreateGauge gets or creates a gauge metric instrument.
func (m *MetricsCollector) getOrCreateGauge(name string) metric.Float64Gauge {
	if gauge, exists := m.gauges[name]; exists {
		return gauge
	}

	gauge, err := m.meter.Float64Gauge(
		name,
		metric.WithDescription("Data layer current value"),
	)
	if err != nil {
		return nil // Failed to create gauge, return nil to skip recording
	}

	m.gauges[name] = gauge

	return gauge
}

// labelsToAttributes converts a labels map to OpenTelemetry attributes.
func labelsToAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

// Ensure MetricsCollector implements both interfaces.
var (
	_ datalayer.MetricsCollector           = (*MetricsCollector)(nil)
	_ datalayer.ContextualMetricsCollector = (*MetricsCollector)(nil)
)
