package cli

import (
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/mailprune/internal/output"
	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Move old conversations to trash",
	Long: `Run searches for conversations older than the cutoff and moves each
page of results to trash until nothing matches, the safety limit is
reached or retries are exhausted.

Trashed conversations stay recoverable until Gmail empties the trash.

On first run, it will open a browser for Google authentication.

Examples:
  mailprune run                        # Use the cutoff and limits from config
  mailprune run --years=5              # Conversations older than 5 years
  mailprune run --days=90 --limit=500  # Older than 90 days, at most 500
  mailprune run --query="from:news@"   # Narrow the search further
  mailprune run -q                     # Only log summaries and errors`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd, &runOpts)
}

func runRun(cmd *cobra.Command, args []string) error {
	return sweepMailbox(cmd, sweep.ActionTrash, &runOpts, nil)
}

// sweepMailbox runs a destructive action end to end. confirm, when set, is
// asked before Gmail is contacted.
func sweepMailbox(cmd *cobra.Command, action sweep.Action, flags *runFlags, confirm func(query string) error) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	s, err := newSession(cmd, action, flags, action == sweep.ActionPermanentDelete)
	if err != nil {
		return err
	}

	if confirm != nil {
		if err := confirm(s.query()); err != nil {
			return err
		}
	}

	runner, err := s.start(ctx)
	if err != nil {
		return err
	}

	stats, runErr := runner.Run(ctx)
	s.done()

	if stats != nil {
		if err := output.Output(outputFmt, stats); err != nil {
			return err
		}
	}

	return runErr
}
