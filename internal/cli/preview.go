package cli

import (
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/mailprune/internal/output"
	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

var (
	previewOpts  runFlags
	previewTrash bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what a run would remove, without changing anything",
	Long: `Preview lists a sample of the oldest matching conversations and counts
how many match, up to 1000.

Examples:
  mailprune preview              # What 'run' would trash
  mailprune preview --years=5    # Try a different cutoff
  mailprune preview --trash      # What 'purge' would delete
  mailprune preview -o json      # Machine-readable result`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	addRunFlags(previewCmd, &previewOpts)
	previewCmd.Flags().BoolVar(&previewTrash, "trash", false, "preview the purge query (conversations in trash)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	// The purge action only changes the query here: Preview never mutates
	action := sweep.ActionPreview
	if previewTrash {
		action = sweep.ActionPermanentDelete
	}

	s, err := newSession(cmd, action, &previewOpts, false)
	if err != nil {
		return err
	}

	runner, err := s.start(ctx)
	if err != nil {
		return err
	}

	result, previewErr := runner.Preview(ctx)
	s.done()

	if result != nil {
		if err := output.Output(outputFmt, result); err != nil {
			return err
		}
	}

	return previewErr
}
