// Package metrics contains sinks that ship published benchmark measurements to time-series
// backends. Currently, the supported output engines are statsd and Prometheus.
//
// Measurements are produced by the benchmark harness at the end of each operation, and every
// publication carries the full mapping of measurements seen so far. Sinks in this package are
// therefore structured around replacement: a statsd sink re-emits every entry, and a Prometheus
// sink resets its gauges before setting them. Fanout combines several sinks into one.
package metrics
