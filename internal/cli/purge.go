package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

var (
	purgeOpts runFlags
	purgeYes  bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently delete old conversations already in trash",
	Long: `Purge searches the trash for conversations older than the cutoff and
deletes them permanently, page by page. This cannot be undone.

Purging needs full mailbox access, so the first purge asks for a separate
authorization and keeps its own token next to the regular one.

Examples:
  mailprune purge                # Asks for confirmation first
  mailprune purge --yes          # No prompt (for cron and scripts)
  mailprune preview --trash      # See what purge would delete`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	addRunFlags(purgeCmd, &purgeOpts)
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runPurge(cmd *cobra.Command, args []string) error {
	return sweepMailbox(cmd, sweep.ActionPermanentDelete, &purgeOpts, confirmPurge)
}

var errPurgeDeclined = errors.New("purge canceled")

func confirmPurge(query string) error {
	if purgeYes {
		return nil
	}

	if !IsInteractive(os.Stdin) {
		return fmt.Errorf("refusing to purge without --yes: stdin is not a terminal")
	}

	ok, err := Confirm(
		"Permanently delete matching conversations?",
		fmt.Sprintf("Query: %s\nThis cannot be undone.", query),
	)
	if err != nil {
		return err
	}
	if !ok {
		return errPurgeDeclined
	}
	return nil
}
