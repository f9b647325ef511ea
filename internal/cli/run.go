package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forthcheck/forthcheck/internal/forth"
	"github.com/forthcheck/forthcheck/internal/harness"
	"github.com/forthcheck/forthcheck/internal/store"
	"github.com/forthcheck/forthcheck/internal/suite"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Keep     bool
	CoreSize int
	CorePath string
	Database string
}

// RunSummary is the run command's JSON payload.
type RunSummary struct {
	Suite   string  `json:"suite"`
	Passed  uint    `json:"passed"`
	Failed  uint    `json:"failed"`
	Total   uint    `json:"total"`
	Seconds float64 `json:"seconds"`
	Aborted bool    `json:"aborted,omitempty"`
	RunID   string  `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the built-in interpreter suite",
		Long: `Run the fixed interpreter check sequence: setup and push/pop interface,
core-image persistence round trip, built-in word behavior, and interpreter
internals.

Examples:
  forthcheck run
  forthcheck run -c
  forthcheck run --keep --core-size 65536
  forthcheck run --db ./history.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Keep, "keep", "k", false, "keep the temporary core file")
	cmd.Flags().IntVar(&opts.CoreSize, "core-size", forth.MinCoreSize, "interpreter core size in cells")
	cmd.Flags().StringVar(&opts.CorePath, "core-file", "unit.core", "path for the persistence-phase core image")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite history database")

	return cmd
}

func runSuite(opts *RunOptions, cmd *cobra.Command) error {
	logger := opts.Logger()
	out := cmd.OutOrStdout()

	script := suite.Build(suite.Config{
		CorePath:  opts.CorePath,
		KeepFiles: opts.Keep,
		CoreSize:  opts.CoreSize,
		Out:       cmd.OutOrStdout(),
	})

	reportOut := out
	if opts.Format == "json" {
		// The report stream would corrupt the JSON payload.
		reportOut = cmd.ErrOrStderr()
	}
	runner := harness.NewRunner(
		harness.WithReporter(harness.NewReporter(reportOut, opts.Color, opts.Silent)),
		harness.WithLogger(logger),
	)

	startedAt := time.Now()
	sum, runErr := runner.Run(script)

	var mustErr *harness.MustError
	aborted := errors.As(runErr, &mustErr)
	if runErr != nil && !aborted {
		return WrapExitError(ExitCommandError, "run failed", runErr)
	}

	result := RunSummary{
		Suite:   script.Name,
		Passed:  sum.Passed,
		Failed:  sum.Failed,
		Total:   sum.Total,
		Seconds: sum.Elapsed.Seconds(),
		Aborted: aborted,
	}

	if opts.Database != "" {
		id, err := recordRun(opts.Database, script.Name, startedAt, sum)
		if err != nil {
			return WrapExitError(ExitCommandError, "record run history", err)
		}
		result.RunID = id
		logger.Info("run recorded", "db", opts.Database, "id", id)
	}

	if opts.Format == "json" {
		msg := fmt.Sprintf("%d check(s) failed", sum.Failed)
		if aborted {
			msg = mustErr.Error()
		}
		if err := writeJSON(out, result, !sum.Ok() || aborted, msg); err != nil {
			return err
		}
	}

	if aborted {
		return WrapExitError(ExitFailure, "run aborted", mustErr)
	}
	if !sum.Ok() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", sum.Failed))
	}
	return nil
}

// recordRun appends the run summary to the history database.
func recordRun(path, suiteName string, startedAt time.Time, sum harness.Summary) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	return st.WriteRun(context.Background(), store.RunRecord{
		Suite:     suiteName,
		StartedAt: startedAt,
		Elapsed:   sum.Elapsed,
		Passed:    sum.Passed,
		Failed:    sum.Failed,
	})
}
