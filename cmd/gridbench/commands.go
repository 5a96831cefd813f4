package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/getsentry/raven-go"
	"github.com/spf13/cobra"

	"gridbench/internal/log"
	"gridbench/internal/meta"
	"gridbench/internal/suite"
)

// cliOpts holds the values of flags shared by every subcommand.
type cliOpts struct {
	configPath string
	verbosity  string
	rows       int
	ops        string
}

func newRootCmd() *cobra.Command {
	opts := &cliOpts{}

	rootCmd := &cobra.Command{
		Use:           "gridbench",
		Short:         "Benchmarks common data grid operations",
		Long:          `gridbench times loading, updating, sorting, filtering, scrolling, and grouping rows in a data grid, and reports the durations to the terminal, an HTML chart, statsd, and Prometheus.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(
		&opts.configPath,
		"config",
		os.Getenv("GRIDBENCH_CONFIG"),
		"path to the configuration file on disk",
	)
	rootCmd.PersistentFlags().StringVar(
		&opts.verbosity,
		"verbosity",
		"error",
		"desired logging verbosity: one of error, warn, info, debug",
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the configured benchmark operations in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, opts)
		},
	}
	runCmd.Flags().IntVar(&opts.rows, "rows", 0, "number of rows to generate, overriding the config")
	runCmd.Flags().StringVar(
		&opts.ops,
		"ops",
		"",
		"comma-separated operations to run, overriding the config: any of load, delta, sort, filter, scroll, group",
	)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Prints the compiled gridbench version SHA",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gridbench/%s\n", meta.VersionSHA)
		},
	}

	rootCmd.AddCommand(runCmd, versionCmd)

	return rootCmd
}

func runCommand(cmd *cobra.Command, opts *cliOpts) error {
	// Logging configuration; default to log.Error verbosity
	level, _ := log.ParseLevel(opts.verbosity)
	logger := log.NewConsoleLogger(level)
	logger.Debug("main: initialized logger: level=%v", level)

	// Parse application configuration
	logger.Debug("main: reading and parsing config: path=%s", opts.configPath)
	config, err := meta.ParseConfig(opts.configPath)
	if err != nil {
		logger.Error("main: error loading config: err=%v", err)
		return err
	}

	if err := applyOverrides(config, opts); err != nil {
		logger.Error("main: invalid flags: err=%v", err)
		return err
	}

	// Configure error reporting
	reporting := config.Application != nil && config.Application.SentryDSN != ""
	if reporting {
		raven.SetDSN(config.Application.SentryDSN)
		raven.SetRelease(meta.VersionSHA)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runID, err := runBenchmark(ctx, config, logger, cmd.OutOrStdout())
	if err != nil {
		logger.Error("main: benchmark failed: run=%s err=%v", runID, err)

		if reporting {
			raven.CaptureErrorAndWait(err, map[string]string{"run": runID})
		}

		return err
	}

	return nil
}

// applyOverrides applies command line overrides on top of the parsed config.
func applyOverrides(config *meta.Config, opts *cliOpts) error {
	if opts.rows < 0 {
		return fmt.Errorf("main: row count must not be negative: rows=%d", opts.rows)
	}

	if opts.rows > 0 {
		config.Benchmark.Rows = opts.rows
	}

	if opts.ops != "" {
		names := strings.Split(opts.ops, ",")

		if _, unknown, ok := suite.ParseOperations(names); !ok {
			return fmt.Errorf("main: unknown benchmark operation: op=%s", unknown)
		}

		config.Benchmark.Operations = names
	}

	return nil
}
