// Package bench implements the benchmark harness: operations are bracketed with start and end
// marks, named durations are derived from pairs of marks, and the full set of durations is
// published to a sink such as a table or a chart.
//
// A Harness owns its marks and measurements explicitly; there is no process-wide registry. The
// measurements of a single operation are cleared by Reset, while the caller-owned Metrics mapping
// that CaptureAll copies into keeps every operation run so far, with later runs of the same
// measurement replacing earlier ones.
package bench
