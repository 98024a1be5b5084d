// Package prometheus exposes goForms metrics through a client_golang Collector.
//
// [NewCollector] reads a metrics snapshot on every scrape and emits one constant counter
// per goForms counter (goforms_csrf_*_total) and the goforms_csrf_validate_latency_seconds
// histogram. [Handler] serves a private registry holding the collector.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry. Callers register the Collector or
//     mount Handler.
//   - Mutate App state.
package prometheus
