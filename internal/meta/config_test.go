package meta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gridbench/internal/grid"
	"gridbench/internal/suite"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestParseConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := ParseConfig("")
	require.NoError(t, err)

	require.Equal(t, 100000, cfg.Benchmark.Rows)
	require.Equal(t, grid.DefaultFrameInterval, cfg.Benchmark.FrameInterval)
	require.True(t, cfg.Output.Table)
	require.Nil(t, cfg.Metrics)
	require.Equal(t, suite.Operations, cfg.Benchmark.ParsedOperations())
	require.NoError(t, cfg.validate())
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
application:
  sentry_dsn: https://key@sentry.example.com/1
benchmark:
  rows: 2500
  seed: 42
  delta:
    add: 10
    update: 0
    remove: 5
  sort:
    column: make
    direction: desc
  frame_interval: 8ms
  operations: [load, sort, scroll]
output:
  table: false
  chart:
    path: metrics.html
metrics:
  statsd:
    addr: localhost:8125
    sample_rate: 0.5
  prometheus:
    textfile: gridbench.prom
`)

	cfg, err := ParseConfig(path)
	require.NoError(t, err)

	require.Equal(t, "https://key@sentry.example.com/1", cfg.Application.SentryDSN)
	require.Equal(t, 2500, cfg.Benchmark.Rows)
	require.Equal(t, int64(42), cfg.Benchmark.Seed)
	require.Equal(t, 8*time.Millisecond, cfg.Benchmark.FrameInterval)
	require.Equal(t, []suite.Operation{suite.Load, suite.Sort, suite.Scroll}, cfg.Benchmark.ParsedOperations())
	require.False(t, cfg.Output.Table)
	require.Equal(t, "metrics.html", cfg.Output.Chart.Path)
	require.Equal(t, "localhost:8125", cfg.Metrics.Statsd.Address)
	require.Equal(t, "gridbench.prom", cfg.Metrics.Prometheus.Textfile)

	opts := cfg.Benchmark.SuiteOpts()
	require.Equal(t, 10, opts.DeltaAdd)
	require.Equal(t, 0, opts.DeltaUpdate)
	require.Equal(t, grid.ColumnMake, opts.SortColumn)
	require.Equal(t, grid.SortDesc, opts.SortDirection)

	// Omitted keys keep their defaults.
	require.Equal(t, "Toyota", opts.FilterText)
	require.Equal(t, 1000, opts.ScrollBatch)
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		message  string
	}{
		{
			name:     "non-positive rows",
			contents: "benchmark:\n  rows: -1\n",
			message:  "row count must be positive",
		},
		{
			name:     "negative delta",
			contents: "benchmark:\n  delta:\n    remove: -3\n",
			message:  "delta transaction sizes",
		},
		{
			name:     "unknown sort column",
			contents: "benchmark:\n  sort:\n    column: colour\n",
			message:  "unknown sort column",
		},
		{
			name:     "unknown sort direction",
			contents: "benchmark:\n  sort:\n    direction: sideways\n",
			message:  "unknown sort direction",
		},
		{
			name:     "unknown operation",
			contents: "benchmark:\n  operations: [load, explode]\n",
			message:  "op=explode",
		},
		{
			name:     "no operations",
			contents: "benchmark:\n  operations: []\n",
			message:  "no benchmark operations",
		},
		{
			name:     "chart without path",
			contents: "output:\n  chart:\n    title: Benchmark\n",
			message:  "missing chart output path",
		},
		{
			name:     "statsd without address",
			contents: "metrics:\n  statsd:\n    sample_rate: 1\n",
			message:  "missing metrics statsd address",
		},
		{
			name:     "statsd sample rate out of range",
			contents: "metrics:\n  statsd:\n    addr: localhost:8125\n    sample_rate: 2\n",
			message:  "sample rate must be in range",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig(writeConfig(t, tc.contents))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestParseConfigMissingFile(t *testing.T) {
	_, err := ParseConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "error reading config")
}

func TestParseConfigMalformed(t *testing.T) {
	_, err := ParseConfig(writeConfig(t, "benchmark: [unterminated"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "error parsing config")
}

func TestSchedulerCapacityCoversOperations(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, len(suite.Operations), cfg.Benchmark.SchedulerCapacity())

	cfg.Benchmark.Operations = []string{"load", "sort", "filter", "sort", "filter", "sort", "filter", "group"}
	require.Equal(t, 8, cfg.Benchmark.SchedulerCapacity())

	cfg.Benchmark.QueueCapacity = 32
	require.Equal(t, 32, cfg.Benchmark.SchedulerCapacity())
}
