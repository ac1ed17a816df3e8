// Package sweep deletes old conversations page by page: it builds a
// date-based query, trashes or deletes each result page, paces requests and
// retries failures with exponential backoff until the results run out, a
// safety limit is hit or retries are exhausted.
package sweep

import (
	"errors"
	"fmt"
	"time"
)

// Action is what a run does to each page of matching conversations
type Action string

const (
	// ActionTrash moves conversations to the recoverable trash
	ActionTrash Action = "trash"
	// ActionPermanentDelete deletes conversations already in trash
	ActionPermanentDelete Action = "delete"
	// ActionPreview changes nothing; it samples and counts matches
	ActionPreview Action = "preview"
)

// ParseAction converts a config or flag value to an Action
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionTrash, ActionPermanentDelete, ActionPreview:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action %q (want trash, delete or preview)", s)
	}
}

// Destructive reports whether the action mutates the mailbox
func (a Action) Destructive() bool {
	return a == ActionTrash || a == ActionPermanentDelete
}

// Status is why a run stopped
type Status string

const (
	StatusRunning          Status = "running"
	StatusExhausted        Status = "exhausted"
	StatusSafetyLimit      Status = "safety-limit-reached"
	StatusRetriesExhausted Status = "retries-exhausted"
	StatusCountCap         Status = "count-cap-reached"
	StatusCounted          Status = "counted"
	StatusCanceled         Status = "canceled"
)

// Preview design constants
const (
	PreviewSampleSize = 10
	PreviewCountCap   = 1000
)

// ErrRetriesExhausted wraps the last failure once the retry budget is spent
var ErrRetriesExhausted = errors.New("retries exhausted")

// RunConfig is the immutable configuration of a single run
type RunConfig struct {
	BatchSize       int           // Conversations per search page
	InterBatchDelay time.Duration // Pause after a full page; also the backoff base
	SafetyLimit     int           // Stop once this many are processed (0 = unbounded)
	MaxRetries      int           // Failures tolerated before the run aborts
	Cutoff          time.Time     // Only conversations last active before this
	Action          Action
	Filter          QueryOptions
}

// Validate checks the invariants the loop relies on
func (c RunConfig) Validate() error {
	var errs []error

	if c.BatchSize < 1 {
		errs = append(errs, errors.New("batch size must be at least 1"))
	}
	if c.InterBatchDelay < 0 {
		errs = append(errs, errors.New("inter-batch delay must not be negative"))
	}
	if c.SafetyLimit < 0 {
		errs = append(errs, errors.New("safety limit must not be negative (0 = unbounded)"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries must not be negative"))
	}
	if c.Cutoff.IsZero() {
		errs = append(errs, errors.New("cutoff is required"))
	}
	if _, err := ParseAction(string(c.Action)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Unbounded reports whether no safety limit applies
func (c RunConfig) Unbounded() bool {
	return c.SafetyLimit == 0
}

// Stats is the progress ledger of one run
type Stats struct {
	RunID            string    `json:"run_id"`
	Action           Action    `json:"action"`
	Query            string    `json:"query"`
	TotalProcessed   int       `json:"total_processed"`
	BatchesProcessed int       `json:"batches_processed"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Status           Status    `json:"status"`
	Err              error     `json:"-"`
}

// Elapsed returns the run duration (so far, if still running)
func (s *Stats) Elapsed() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Error returns the terminal error message, if any
func (s *Stats) Error() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
