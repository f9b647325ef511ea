package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forthcheck/forthcheck/internal/harness"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
	Filter string
}

// ScenarioResult holds the result of a single scenario run.
type ScenarioResult struct {
	Name    string `json:"name"`
	Pass    bool   `json:"pass"`
	Passed  uint   `json:"passed"`
	Failed  uint   `json:"failed"`
	Aborted bool   `json:"aborted,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ScenarioReport aggregates all scenario runs.
type ScenarioReport struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <file-or-dir>",
		Short: "Run YAML scenario files",
		Long: `Run data-driven check scripts from YAML scenario files. A directory is
walked for .yaml/.yml files; each scenario runs on a fresh interpreter.

Examples:
  forthcheck scenario ./scenarios
  forthcheck scenario ./scenarios --filter "arith*"
  forthcheck scenario checkout.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runScenarios(opts *ScenarioOptions, path string, cmd *cobra.Command) error {
	files, err := findScenarioFiles(path, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "find scenarios", err)
	}
	if len(files) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files under %s", path))
	}

	out := cmd.OutOrStdout()
	report := ScenarioReport{Total: len(files)}

	for _, file := range files {
		res := runOneScenario(opts, file, cmd)
		report.Scenarios = append(report.Scenarios, res)
		if res.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if opts.Format == "json" {
		msg := fmt.Sprintf("%d scenario(s) failed", report.Failed)
		if err := writeJSON(out, report, report.Failed > 0, msg); err != nil {
			return err
		}
	} else if !opts.Silent {
		fmt.Fprintf(out, "\nscenarios: %d passed, %d failed, %d total\n",
			report.Passed, report.Failed, report.Total)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", report.Failed))
	}
	return nil
}

// runOneScenario loads and executes a single scenario file.
func runOneScenario(opts *ScenarioOptions, file string, cmd *cobra.Command) ScenarioResult {
	out := cmd.OutOrStdout()
	reportOut := out
	if opts.Format == "json" {
		reportOut = cmd.ErrOrStderr()
	}

	s, err := harness.LoadScenario(file)
	if err != nil {
		if opts.Format != "json" && !opts.Silent {
			fmt.Fprintf(out, "✗ %s\n  %v\n", filepath.Base(file), err)
		}
		return ScenarioResult{Name: filepath.Base(file), Error: err.Error()}
	}

	runner := harness.NewRunner(
		harness.WithReporter(harness.NewReporter(reportOut, opts.Color, opts.Silent)),
		harness.WithLogger(opts.Logger()),
	)
	sum, runErr := runner.Run(s.Script(reportOut))

	res := ScenarioResult{
		Name:   s.Name,
		Pass:   runErr == nil && sum.Ok(),
		Passed: sum.Passed,
		Failed: sum.Failed,
	}
	var mustErr *harness.MustError
	if errors.As(runErr, &mustErr) {
		res.Aborted = true
		res.Error = mustErr.Error()
	}

	if opts.Format != "json" && !opts.Silent {
		if res.Pass {
			fmt.Fprintf(out, "✓ %s\n", s.Name)
		} else {
			fmt.Fprintf(out, "✗ %s\n", s.Name)
		}
	}
	return res
}

// findScenarioFiles resolves path to a list of scenario files. Files are
// returned as-is; directories are walked for YAML files matching filter.
func findScenarioFiles(path string, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	return files, err
}
