// Package internaldefs holds the metric names, help strings and bucket bounds shared by
// the exporter packages, so the Prometheus and OTel exporters publish identical series.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
