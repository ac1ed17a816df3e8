package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/vijay-prabhu/mailprune/internal/email"
)

// PreviewResult is what a preview found, without changing anything
type PreviewResult struct {
	RunID      string                  `json:"run_id"`
	Query      string                  `json:"query"`
	Cutoff     time.Time               `json:"cutoff"`
	Sample     []email.ConversationRef `json:"sample"`
	Count      int                     `json:"count"`
	CapReached bool                    `json:"cap_reached"`
	Cap        int                     `json:"cap"`
	Status     Status                  `json:"status"`
	StartTime  time.Time               `json:"start_time"`
	EndTime    time.Time               `json:"end_time"`
}

// CountString renders the count, marking it as a lower bound at the cap
func (p *PreviewResult) CountString() string {
	if p.CapReached {
		return fmt.Sprintf("%d+", p.Count)
	}
	return fmt.Sprintf("%d", p.Count)
}

// Preview samples and counts the conversations a run would affect. Nothing
// is removed, so counting walks the results with an advancing offset;
// searching offset 0 repeatedly would see the same page forever.
func (r *Runner) Preview(ctx context.Context) (*PreviewResult, error) {
	result := &PreviewResult{
		RunID:     r.runID,
		Query:     r.query,
		Cutoff:    r.cfg.Cutoff,
		Cap:       PreviewCountCap,
		Status:    StatusRunning,
		StartTime: r.now(),
	}

	r.log.Important("Starting preview",
		"run", r.runID,
		"query", r.query,
		"cutoff", r.cfg.Cutoff.Format(time.RFC3339),
	)

	backoff := NewBackoff(r.cfg.InterBatchDelay, r.cfg.MaxRetries, r.sleep)

	sample, err := r.sample(ctx, backoff)
	if err != nil {
		return r.finishPreview(ctx, result, err)
	}
	result.Sample = sample

	for i, ref := range sample {
		r.log.Info(fmt.Sprintf("Sample %d: %s", i+1, ref.DisplaySubject()),
			"last_activity", ref.LastActivity.Format(time.RFC3339),
			"messages", ref.MessageCount,
		)
	}

	count, capped, err := r.count(ctx, backoff)
	result.Count = count
	result.CapReached = capped
	if err != nil {
		return r.finishPreview(ctx, result, err)
	}

	if capped {
		result.Status = StatusCountCap
		r.log.Important(fmt.Sprintf("At least %d conversations match (count stopped at cap)", count))
	} else {
		result.Status = StatusCounted
		r.log.Important(fmt.Sprintf("%d conversations match", count))
	}

	return r.finishPreview(ctx, result, nil)
}

// sample fetches the first PreviewSampleSize matches with metadata
func (r *Runner) sample(ctx context.Context, backoff *Backoff) ([]email.ConversationRef, error) {
	var refs []email.ConversationRef

	err := r.retry(ctx, backoff, func(ctx context.Context) error {
		page, err := r.provider.Search(ctx, r.query, 0, PreviewSampleSize)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		described := make([]email.ConversationRef, 0, len(page))
		for _, ref := range page {
			d, err := r.provider.Describe(ctx, ref)
			if err != nil {
				return fmt.Errorf("describe failed: %w", err)
			}
			described = append(described, d)
		}
		refs = described
		return nil
	})
	if err == nil && r.progress != nil {
		r.progress(Progress{Phase: PhaseSampling, Current: len(refs), PageSize: len(refs), StartedAt: r.now()})
	}

	return refs, err
}

// count walks matches with an advancing offset until a short page or the cap
func (r *Runner) count(ctx context.Context, backoff *Backoff) (int, bool, error) {
	total := 0

	for total < PreviewCountCap {
		want := min(r.cfg.BatchSize, PreviewCountCap-total)

		var page email.Page
		err := r.retry(ctx, backoff, func(ctx context.Context) error {
			p, err := r.provider.Search(ctx, r.query, total, want)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			page = p
			return nil
		})
		if err != nil {
			return total, false, err
		}

		total += len(page)
		if r.progress != nil {
			r.progress(Progress{Phase: PhaseCounting, Current: total, Limit: PreviewCountCap, PageSize: len(page)})
		}

		if !page.Full(want) {
			return total, false, nil
		}
		if total < PreviewCountCap {
			if err := r.sleep(ctx, r.cfg.InterBatchDelay); err != nil {
				return total, false, err
			}
		}
	}

	return total, true, nil
}

// retry runs fn under backoff until it succeeds or fails terminally
func (r *Runner) retry(ctx context.Context, backoff *Backoff, fn func(context.Context) error) error {
	for {
		outcome := backoff.Attempt(ctx, fn)
		switch outcome.Kind {
		case Success:
			return nil
		case RetryableFailure:
			r.log.Error("Preview request failed, retrying",
				"attempt", outcome.Attempt,
				"delay", outcome.Delay,
				"err", outcome.Cause,
			)
		default:
			return outcome.Cause
		}
	}
}

func (r *Runner) finishPreview(ctx context.Context, result *PreviewResult, err error) (*PreviewResult, error) {
	result.EndTime = r.now()
	if err != nil {
		if ctx.Err() != nil {
			result.Status = StatusCanceled
		} else {
			result.Status = StatusRetriesExhausted
		}
		r.log.Error("Preview aborted", "err", err)
	}
	r.log.Important("Preview summary",
		"run", result.RunID,
		"status", result.Status,
		"count", result.CountString(),
		"elapsed", result.EndTime.Sub(result.StartTime).Round(time.Millisecond),
	)
	return result, err
}
