package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"gridbench/internal/bench"
	"gridbench/internal/data"
	"gridbench/internal/grid"
	"gridbench/internal/log"
	"gridbench/internal/meta"
	"gridbench/internal/metrics"
	"gridbench/internal/report"
	"gridbench/internal/suite"
)

// runBenchmark wires a grid, a harness, and the configured sinks together, then runs every
// configured operation through a scheduler. It returns the run ID, which tags every published
// measurement.
func runBenchmark(ctx context.Context, config *meta.Config, logger log.Logger, out io.Writer) (string, error) {
	runID := uuid.NewString()
	logger.Info("main: starting benchmark run: run=%s rows=%d", runID, config.Benchmark.Rows)

	sinks, closeSinks, err := configureSinks(config, runID, logger, out)
	if err != nil {
		return runID, err
	}
	defer closeSinks()

	loop := grid.NewFrameLoop(grid.FrameLoopOpts{
		Interval: config.Benchmark.FrameInterval,
		Logger:   logger,
	})
	loop.Start()
	defer loop.Stop()

	s := suite.New(
		grid.NewMemoryGrid(loop, logger),
		loop,
		bench.NewHarness(bench.HarnessOpts{Logger: logger}),
		data.NewGenerator(config.Benchmark.Seed),
		sinks,
		logger,
		config.Benchmark.SuiteOpts(),
	)

	scheduler := suite.NewScheduler(s, suite.SchedulerOpts{
		QueueCapacity: config.Benchmark.SchedulerCapacity(),
		Logger:        logger,
	})
	scheduler.Start()
	defer scheduler.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ops := config.Benchmark.ParsedOperations()
	pending := make([]*suite.Pending, 0, len(ops))

	for _, op := range ops {
		p, err := scheduler.Submit(ctx, op)
		if err != nil {
			return runID, fmt.Errorf("main: error submitting operation: op=%s err=%w", op, err)
		}
		pending = append(pending, p)
	}

	for _, p := range pending {
		if err := p.Wait(ctx); err != nil {
			// Requests still queued are skipped once the context is canceled.
			cancel()
			return runID, fmt.Errorf("main: operation failed: op=%s err=%w", p.Operation, err)
		}
	}

	logger.Info(
		"main: completed benchmark run: run=%s ops=%d frames=%d",
		runID,
		len(ops),
		loop.Frames(),
	)

	return runID, nil
}

// configureSinks builds the fan-out of every configured sink, along with a function releasing any
// resources they hold.
func configureSinks(config *meta.Config, runID string, logger log.Logger, out io.Writer) (metrics.Fanout, func(), error) {
	var sinks metrics.Fanout
	var closers []io.Closer

	closeAll := func() {
		for _, closer := range closers {
			if err := closer.Close(); err != nil {
				logger.Warn("main: error closing sink: err=%v", err)
			}
		}
	}

	if config.Output.Table {
		sinks = append(sinks, report.NewTableSink(out, fmt.Sprintf("gridbench run %s", runID)))
	}

	if config.Output.Chart != nil {
		logger.Info("main: configuring chart output: path=%s", config.Output.Chart.Path)
		sinks = append(sinks, report.NewChartSink(config.Output.Chart.Path, config.Output.Chart.Title, runID))
	}

	if config.Metrics != nil && config.Metrics.Statsd != nil {
		logger.Info(
			"main: configuring statsd metrics reporting: addr=%s sample_rate=%f",
			config.Metrics.Statsd.Address,
			config.Metrics.Statsd.SampleRate,
		)

		statsdSink, err := metrics.NewStatsdSink(
			config.Metrics.Statsd.Address,
			float32(config.Metrics.Statsd.SampleRate),
			runID,
		)
		if err != nil {
			closeAll()
			return nil, nil, err
		}

		sinks = append(sinks, statsdSink)
		closers = append(closers, statsdSink)
	}

	if config.Metrics != nil && config.Metrics.Prometheus != nil {
		logger.Info(
			"main: configuring prometheus textfile export: path=%s",
			config.Metrics.Prometheus.Textfile,
		)

		sinks = append(sinks, metrics.NewPrometheusSink(
			config.Metrics.Prometheus.Textfile,
			prometheus.Labels{"run": runID},
		))
	}

	if config.Metrics == nil {
		logger.Warn("main: no metrics output engine specified; disabling metrics")
	}

	return sinks, closeAll, nil
}
