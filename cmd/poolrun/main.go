// Command poolrun drives a thread pool with concurrent submitters and reports
// what happened to every task.
//
// Usage:
//
//	poolrun --workers 8 --tasks 100000 --submitters 4 --work 50us
//	poolrun --queue-capacity 64 --reject --fail-every 10 --panic-every 97
//	poolrun --rate 500 --burst 50 --retries 3 --verbose
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := defaultConfig()

	cmd := &cobra.Command{
		Use:   "poolrun",
		Short: "Run a load of tasks through a fixed-size thread pool",
		Long: `poolrun starts a pool with a fixed number of workers, feeds it from
several concurrent submitters, stops it and checks that every accepted task
ran exactly once.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			logger, err := newLogger(cfg.verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			out := cmd.OutOrStdout()
			rep, err := runLoad(cfg, logger, newProgressBar(cfg, out))
			if err != nil {
				return err
			}

			renderReport(out, cfg, rep)
			if !rep.consistent() {
				return fmt.Errorf("%d tasks ran but %d were accepted", rep.Executed, rep.Accepted)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&cfg.workers, "workers", "w", cfg.workers, "number of pool workers")
	flags.IntVarP(&cfg.tasks, "tasks", "n", cfg.tasks, "total number of tasks to submit")
	flags.IntVarP(&cfg.submitters, "submitters", "s", cfg.submitters, "number of concurrent submitters")
	flags.DurationVar(&cfg.work, "work", cfg.work, "simulated work per task")
	flags.IntVar(&cfg.failEvery, "fail-every", 0, "make every Nth task return an error (0 disables)")
	flags.IntVar(&cfg.panicEvery, "panic-every", 0, "make every Nth task panic (0 disables)")
	flags.IntVar(&cfg.queueCapacity, "queue-capacity", 0, "bound the queue (0 is unbounded)")
	flags.BoolVar(&cfg.reject, "reject", false, "reject submissions to a full queue instead of blocking")
	flags.Float64Var(&cfg.rate, "rate", 0, "maximum task starts per second (0 disables)")
	flags.IntVar(&cfg.burst, "burst", 1, "rate limiter burst")
	flags.IntVar(&cfg.retries, "retries", 0, "extra attempts for failing tasks")
	flags.BoolVar(&cfg.lockThreads, "lock-threads", false, "run every worker on its own OS thread")
	flags.BoolVar(&cfg.ci, "ci", false, "plain output without a progress bar")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func defaultConfig() config {
	return config{
		workers:    runtime.NumCPU(),
		tasks:      10000,
		submitters: 4,
		work:       100 * time.Microsecond,
		burst:      1,
	}
}

// newLogger returns a development logger when verbose, otherwise a production
// logger that only reports errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	return cfg.Build()
}
