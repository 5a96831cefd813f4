// Package report renders published measurement snapshots for people: a terminal table and an
// HTML bar chart. Both are bench.Sink implementations and can be combined with metrics.Fanout.
package report
