// Package otel provides OpenTelemetry metric exporter bindings for the
// native user store's counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter instrument for
// each nativeusers.MetricID. A single callback reads
// [nativeusers.Store.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate store state.
package otel
