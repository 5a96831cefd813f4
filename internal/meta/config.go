package meta

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gridbench/internal/grid"
	"gridbench/internal/suite"
)

// ApplicationConfig is a top-level block for application-level meta configuration.
type ApplicationConfig struct {
	SentryDSN string `yaml:"sentry_dsn"`
}

// DeltaConfig sizes the delta update transaction.
type DeltaConfig struct {
	Add    int `yaml:"add"`
	Update int `yaml:"update"`
	Remove int `yaml:"remove"`
}

// SortConfig describes the sort benchmark's column state.
type SortConfig struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction"`
}

// BenchmarkConfig is a top-level block for benchmark parameters.
type BenchmarkConfig struct {
	Rows          int           `yaml:"rows"`
	Seed          int64         `yaml:"seed"`
	Delta         DeltaConfig   `yaml:"delta"`
	Sort          SortConfig    `yaml:"sort"`
	FilterText    string        `yaml:"filter_text"`
	GroupColumn   string        `yaml:"group_column"`
	ScrollBatch   int           `yaml:"scroll_batch"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	Operations    []string      `yaml:"operations"`
	// QueueCapacity bounds the scheduler's request queue. Values below the number of operations,
	// including the default of zero, are raised to it.
	QueueCapacity int `yaml:"queue_capacity"`
}

// OutputConfig is a top-level block for human-readable result output.
type OutputConfig struct {
	Table bool `yaml:"table"`
	Chart *struct {
		Path  string `yaml:"path"`
		Title string `yaml:"title"`
	} `yaml:"chart"`
}

// MetricsConfig is a top-level block for metrics configuration.
type MetricsConfig struct {
	Statsd *struct {
		Address    string  `yaml:"addr"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"statsd"`
	Prometheus *struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"prometheus"`
}

// Config describes all application configuration options.
type Config struct {
	Application *ApplicationConfig `yaml:"application"`
	Benchmark   BenchmarkConfig    `yaml:"benchmark"`
	Output      OutputConfig       `yaml:"output"`
	Metrics     *MetricsConfig     `yaml:"metrics"`
}

// DefaultConfig returns the configuration used when no config file is specified. Keys omitted
// from a config file keep these values.
func DefaultConfig() *Config {
	opts := suite.DefaultOpts()

	operations := make([]string, 0, len(suite.Operations))
	for _, op := range suite.Operations {
		operations = append(operations, op.String())
	}

	return &Config{
		Benchmark: BenchmarkConfig{
			Rows: opts.Rows,
			Seed: 1,
			Delta: DeltaConfig{
				Add:    opts.DeltaAdd,
				Update: opts.DeltaUpdate,
				Remove: opts.DeltaRemove,
			},
			Sort: SortConfig{
				Column:    opts.SortColumn,
				Direction: string(opts.SortDirection),
			},
			FilterText:    opts.FilterText,
			GroupColumn:   opts.GroupColumn,
			ScrollBatch:   opts.ScrollBatch,
			FrameInterval: grid.DefaultFrameInterval,
			Operations:    operations,
		},
		Output: OutputConfig{Table: true},
	}
}

// ParseConfig parses a Config struct instance from a file specified as a path on disk. An empty
// path yields the default configuration.
func ParseConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: error reading config: err=%v", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: error parsing config: err=%v", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SuiteOpts converts the benchmark block into suite parameters.
func (c *BenchmarkConfig) SuiteOpts() suite.Opts {
	return suite.Opts{
		Rows:          c.Rows,
		DeltaAdd:      c.Delta.Add,
		DeltaUpdate:   c.Delta.Update,
		DeltaRemove:   c.Delta.Remove,
		SortColumn:    c.Sort.Column,
		SortDirection: grid.SortDirection(c.Sort.Direction),
		FilterText:    c.FilterText,
		GroupColumn:   c.GroupColumn,
		ScrollBatch:   c.ScrollBatch,
	}
}

// ParsedOperations returns the configured operations. It assumes the config has been validated.
func (c *BenchmarkConfig) ParsedOperations() []suite.Operation {
	ops, _, _ := suite.ParseOperations(c.Operations)
	return ops
}

// SchedulerCapacity returns the queue capacity needed to submit every configured operation at
// once.
func (c *BenchmarkConfig) SchedulerCapacity() int {
	if n := len(c.Operations); c.QueueCapacity < n {
		return n
	}

	return c.QueueCapacity
}

// validate the contents of the configuration. Returns an error if validation failed; nil otherwise.
func (c *Config) validate() error {
	/* Benchmark */

	if c.Benchmark.Rows <= 0 {
		return fmt.Errorf("config: benchmark row count must be positive: rows=%d", c.Benchmark.Rows)
	}

	if c.Benchmark.Delta.Add < 0 || c.Benchmark.Delta.Update < 0 || c.Benchmark.Delta.Remove < 0 {
		return fmt.Errorf("config: delta transaction sizes must not be negative")
	}

	if !grid.KnownColumn(c.Benchmark.Sort.Column) {
		return fmt.Errorf("config: unknown sort column: col=%s", c.Benchmark.Sort.Column)
	}

	switch grid.SortDirection(c.Benchmark.Sort.Direction) {
	case grid.SortAsc, grid.SortDesc:
	default:
		return fmt.Errorf("config: unknown sort direction: direction=%s", c.Benchmark.Sort.Direction)
	}

	if !grid.KnownColumn(c.Benchmark.GroupColumn) {
		return fmt.Errorf("config: unknown group column: col=%s", c.Benchmark.GroupColumn)
	}

	if c.Benchmark.ScrollBatch <= 0 {
		return fmt.Errorf("config: scroll batch must be positive: scroll_batch=%d", c.Benchmark.ScrollBatch)
	}

	if c.Benchmark.FrameInterval <= 0 {
		return fmt.Errorf("config: frame interval must be positive: frame_interval=%v", c.Benchmark.FrameInterval)
	}

	if len(c.Benchmark.Operations) == 0 {
		return fmt.Errorf("config: no benchmark operations specified")
	}

	if _, unknown, ok := suite.ParseOperations(c.Benchmark.Operations); !ok {
		return fmt.Errorf("config: unknown benchmark operation: op=%s", unknown)
	}

	/* Output */

	if c.Output.Chart != nil && c.Output.Chart.Path == "" {
		return fmt.Errorf("config: missing chart output path")
	}

	/* Metrics */

	// Users can omit the metrics block entirely to disable metrics reporting.
	if c.Metrics != nil && c.Metrics.Statsd != nil {
		if c.Metrics.Statsd.Address == "" {
			return fmt.Errorf("config: missing metrics statsd address")
		}

		if c.Metrics.Statsd.SampleRate < 0 || c.Metrics.Statsd.SampleRate > 1 {
			return fmt.Errorf("config: statsd sample rate must be in range [0.0, 1.0]")
		}
	}

	if c.Metrics != nil && c.Metrics.Prometheus != nil && c.Metrics.Prometheus.Textfile == "" {
		return fmt.Errorf("config: missing metrics prometheus textfile path")
	}

	return nil
}
