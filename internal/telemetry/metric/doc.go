// Package metric provides Prometheus metrics for CompanyLock.
//
//   - prometheus.go: the Registry, its client and dev-server metrics,
//     the /metrics handler and a text dump for the CLI
//   - collector.go: a collector reporting live session and reveal state
//
// All metric names carry the "companylock" namespace.
package metric
