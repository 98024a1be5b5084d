// Package otel binds goForms counters and histograms to OpenTelemetry observable
// instruments.
//
// [NewExporter] registers one Int64ObservableCounter per goForms counter and one
// Int64ObservableGauge per latency histogram bucket. A single callback reads the App's
// metrics snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate App state.
package otel
