// Package data contains the synthetic row model benchmarks operate on, and general-purpose data
// structures used by the benchmark scheduler.
package data
