// Package grid contains the data grid that benchmarks drive and the host environment that paints
// it. The in-memory grid implements only the plain semantics needed to have something to time
// (stable multi-column sort, word-wise quick filter, grouping, ID-keyed transactions); it makes no
// attempt at row virtualization or incremental rendering.
package grid
