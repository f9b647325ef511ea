// Package cli implements the forthcheck command surface on cobra: run the
// built-in suite, run scenario files, and inspect recorded run history.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Color   bool
	Silent  bool
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Logger builds the diagnostic logger implied by the global flags.
func (o *RootOptions) Logger() *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// NewRootCommand creates the root command for the forthcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "forthcheck",
		Short: "Unit-test harness for the forth interpreter",
		Long: `forthcheck exercises the forth interpreter library through its public
interface. Fatal faults raised inside the library (invariant panics) are
intercepted and recorded as failed checks instead of killing the run.

Exit codes:
  0 - all checks passed
  1 - one or more checks failed (or a mandatory check aborted the run)
  2 - command error (invalid flags, missing paths, ...)`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Color, "color", "c", false, "colorize report output")
	cmd.PersistentFlags().BoolVarP(&opts.Silent, "silent", "s", false, "suppress the report stream")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose diagnostics on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "summary format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
