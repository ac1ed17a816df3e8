package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/mailprune/internal/email"
	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case *sweep.Stats:
		return statsTable(w, v)
	case *sweep.PreviewResult:
		return previewTable(w, v)
	case []email.ConversationRef:
		return conversationsTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func statsTable(w io.Writer, s *sweep.Stats) error {
	rows := [][]string{
		{"Run", s.RunID},
		{"Action", string(s.Action)},
		{"Query", s.Query},
		{"Status", string(s.Status)},
		{"Conversations", strconv.Itoa(s.TotalProcessed)},
		{"Batches", strconv.Itoa(s.BatchesProcessed)},
		{"Elapsed", formatElapsed(s.Elapsed())},
	}
	if s.Err != nil {
		rows = append(rows, []string{"Error", truncate(s.Error(), 80)})
	}

	return keyValueTable(w, rows)
}

func previewTable(w io.Writer, p *sweep.PreviewResult) error {
	if err := conversationsTable(w, p.Sample); err != nil {
		return err
	}
	fmt.Fprintln(w)

	return keyValueTable(w, [][]string{
		{"Run", p.RunID},
		{"Query", p.Query},
		{"Cutoff", p.Cutoff.Format("Jan 02, 2006")},
		{"Matching", p.CountString()},
		{"Status", string(p.Status)},
	})
}

func conversationsTable(w io.Writer, convs []email.ConversationRef) error {
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Last Activity", "Messages", "Subject")

	for _, c := range convs {
		lastActivity := "unknown"
		if !c.LastActivity.IsZero() {
			lastActivity = c.LastActivity.Format("Jan 02, 2006")
		}
		if err := table.Append([]string{
			lastActivity,
			strconv.Itoa(c.MessageCount),
			truncate(c.DisplaySubject(), 60),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func keyValueTable(w io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// formatElapsed rounds a duration for display
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

// truncate shortens s to max runes, never splitting a character
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
