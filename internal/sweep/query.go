package sweep

import (
	"fmt"
	"strings"
	"time"
)

// QueryOptions narrows the date query
type QueryOptions struct {
	KeepStarred   bool   // Exclude starred conversations
	KeepImportant bool   // Exclude conversations marked important
	Extra         string // Raw provider operators appended as-is
}

// Cutoff returns now minus the given years and days. Both may be set and
// add up; zero for both yields now itself.
func Cutoff(now time.Time, years, days int) time.Time {
	return now.AddDate(-years, 0, -days)
}

// BuildQuery renders the provider search matching conversations whose most
// recent activity is strictly before cutoff. Gmail reads before:<epoch> as
// an exclusive bound in seconds.
func BuildQuery(cutoff time.Time, action Action, opts QueryOptions) string {
	var parts []string

	if action == ActionPermanentDelete {
		parts = append(parts, "in:trash")
	}

	parts = append(parts, fmt.Sprintf("before:%d", cutoff.Unix()))

	if opts.KeepStarred {
		parts = append(parts, "-is:starred")
	}
	if opts.KeepImportant {
		parts = append(parts, "-is:important")
	}
	if extra := strings.TrimSpace(opts.Extra); extra != "" {
		parts = append(parts, extra)
	}

	return strings.Join(parts, " ")
}
