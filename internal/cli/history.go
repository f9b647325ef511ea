package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forthcheck/forthcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with 'forthcheck run --db', newest first.

Examples:
  forthcheck history --db ./history.db
  forthcheck history --db ./history.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite history database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func listHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open history database", err)
	}
	defer st.Close()

	recs, err := st.ListRuns(context.Background(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, recs, false, "")
	}

	if len(recs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}
	for _, rec := range recs {
		status := "ok"
		if !rec.Ok() {
			status = "FAILED"
		}
		fmt.Fprintf(out, "%s  %-8s %-8s passed %d/%d  %.3fs  %s\n",
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Suite,
			status,
			rec.Passed,
			rec.Passed+rec.Failed,
			rec.Elapsed.Seconds(),
			rec.ID,
		)
	}
	return nil
}
