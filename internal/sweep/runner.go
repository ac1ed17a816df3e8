package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-prabhu/mailprune/internal/email"
)

// Logger is the log sink a run writes to
type Logger interface {
	Info(msg string, keyvals ...interface{})
	Important(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// Options wires optional collaborators into a Runner
type Options struct {
	Logger   Logger           // Defaults to a no-op logger
	Sleep    SleepFunc        // Defaults to Sleep
	Now      func() time.Time // Defaults to time.Now
	Progress ProgressCallback // Optional
	RunID    string           // Defaults to a new UUID
}

// Runner executes one sweep over a provider
type Runner struct {
	provider email.Provider
	cfg      RunConfig
	query    string
	log      Logger
	sleep    SleepFunc
	now      func() time.Time
	progress ProgressCallback
	runID    string
}

// New creates a Runner. The query is built once here and reused for every
// page request of the run.
func New(provider email.Provider, cfg RunConfig, opts Options) (*Runner, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}

	r := &Runner{
		provider: provider,
		cfg:      cfg,
		query:    BuildQuery(cfg.Cutoff, cfg.Action, cfg.Filter),
		log:      opts.Logger,
		sleep:    opts.Sleep,
		now:      opts.Now,
		progress: opts.Progress,
		runID:    opts.RunID,
	}
	if r.log == nil {
		r.log = nopLogger{}
	}
	if r.sleep == nil {
		r.sleep = Sleep
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.runID == "" {
		r.runID = uuid.New().String()
	}

	return r, nil
}

// Query returns the search query used by the run
func (r *Runner) Query() string {
	return r.query
}

// RunID returns the identifier attached to the run's stats
func (r *Runner) RunID() string {
	return r.runID
}

// Config returns the run configuration
func (r *Runner) Config() RunConfig {
	return r.cfg
}

// Run trashes or permanently deletes matching conversations page by page.
//
// Every page is requested at offset 0: the action removes the page from the
// result set, so the next search returns the following conversations. The
// returned Stats are never nil and always reflect the pages that succeeded;
// the error is non-nil only when the retry budget ran out or ctx was canceled.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	if !r.cfg.Action.Destructive() {
		return nil, fmt.Errorf("action %q does not remove matches; use Preview", r.cfg.Action)
	}

	stats := &Stats{
		RunID:     r.runID,
		Action:    r.cfg.Action,
		Query:     r.query,
		StartTime: r.now(),
		Status:    StatusRunning,
	}

	r.log.Important("Starting run",
		"run", r.runID,
		"provider", r.provider.Name(),
		"action", r.cfg.Action,
		"query", r.query,
		"batch_size", r.cfg.BatchSize,
		"safety_limit", limitString(r.cfg.SafetyLimit),
	)

	backoff := NewBackoff(r.cfg.InterBatchDelay, r.cfg.MaxRetries, r.sleep)

	for stats.Status == StatusRunning {
		var page email.Page

		outcome := backoff.Attempt(ctx, func(ctx context.Context) error {
			p, err := r.provider.Search(ctx, r.query, 0, r.cfg.BatchSize)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			page = p
			if len(p) == 0 {
				return nil
			}
			return r.apply(ctx, p)
		})

		switch outcome.Kind {
		case RetryableFailure:
			r.log.Error("Batch failed, retrying",
				"attempt", outcome.Attempt,
				"max_retries", r.cfg.MaxRetries,
				"delay", outcome.Delay,
				"err", outcome.Cause,
			)
			r.report(stats, Progress{Phase: PhaseRetrying, Delay: outcome.Delay})
			continue

		case TerminalFailure:
			stats.Err = outcome.Cause
			if ctx.Err() != nil {
				stats.Status = StatusCanceled
			} else {
				stats.Status = StatusRetriesExhausted
			}
			r.log.Error("Run aborted", "err", outcome.Cause)
			continue
		}

		if len(page) == 0 {
			stats.Status = StatusExhausted
			r.log.Info("No more matching conversations")
			continue
		}

		stats.TotalProcessed += len(page)
		stats.BatchesProcessed++

		r.log.Info(fmt.Sprintf("Batch %d: %s %d conversations", stats.BatchesProcessed, verb(r.cfg.Action), len(page)),
			"total", stats.TotalProcessed,
		)
		r.report(stats, Progress{Phase: PhaseBatchDone, PageSize: len(page)})

		// A full page means more results are likely; a partial page is
		// followed by one more search that should come back empty
		if page.Full(r.cfg.BatchSize) {
			if err := r.sleep(ctx, r.cfg.InterBatchDelay); err != nil {
				stats.Err = err
				stats.Status = StatusCanceled
				r.log.Error("Run aborted", "err", err)
				continue
			}
		}

		if !r.cfg.Unbounded() && stats.TotalProcessed >= r.cfg.SafetyLimit {
			stats.Status = StatusSafetyLimit
			r.log.Important("Safety limit reached",
				"limit", r.cfg.SafetyLimit,
				"total", stats.TotalProcessed,
			)
		}
	}

	stats.EndTime = r.now()
	r.logSummary(stats)

	return stats, stats.Err
}

// apply performs the configured action on one page
func (r *Runner) apply(ctx context.Context, page email.Page) error {
	switch r.cfg.Action {
	case ActionTrash:
		if err := r.provider.BulkTrash(ctx, page); err != nil {
			return fmt.Errorf("trash failed: %w", err)
		}
	case ActionPermanentDelete:
		for _, ref := range page {
			if err := r.provider.TrashAgain(ctx, ref); err != nil {
				return fmt.Errorf("permanent delete failed: %w", err)
			}
		}
	default:
		return fmt.Errorf("unsupported action %q", r.cfg.Action)
	}
	return nil
}

func (r *Runner) report(stats *Stats, p Progress) {
	if r.progress == nil {
		return
	}
	p.Batch = stats.BatchesProcessed
	p.Current = stats.TotalProcessed
	p.Limit = r.cfg.SafetyLimit
	p.StartedAt = stats.StartTime
	r.progress(p)
}

// logSummary emits the end-of-run block, whatever the outcome
func (r *Runner) logSummary(stats *Stats) {
	r.log.Important("Run summary",
		"run", stats.RunID,
		"status", stats.Status,
	)
	r.log.Important(fmt.Sprintf("Total conversations %s: %d", verb(stats.Action), stats.TotalProcessed))
	r.log.Important(fmt.Sprintf("Batches processed: %d", stats.BatchesProcessed))
	r.log.Important(fmt.Sprintf("Elapsed: %s", stats.Elapsed().Round(time.Millisecond)))
	if stats.Err != nil {
		r.log.Error("Run ended with error", "err", stats.Err)
	}
}

func verb(a Action) string {
	switch a {
	case ActionTrash:
		return "trashed"
	case ActionPermanentDelete:
		return "deleted"
	default:
		return "matched"
	}
}

func limitString(n int) string {
	if n == 0 {
		return "unbounded"
	}
	return fmt.Sprintf("%d", n)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})      {}
func (nopLogger) Important(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{})     {}
