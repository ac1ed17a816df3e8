package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OutcomeKind classifies one attempt
type OutcomeKind int

const (
	// Success means the attempt completed without error
	Success OutcomeKind = iota
	// RetryableFailure means the attempt failed, the backoff delay has been
	// waited out and the caller should re-run the same step
	RetryableFailure
	// TerminalFailure means the run must stop
	TerminalFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case RetryableFailure:
		return "retryable"
	case TerminalFailure:
		return "terminal"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of Backoff.Attempt
type Outcome struct {
	Kind    OutcomeKind
	Cause   error         // Failure cause (nil on success)
	Delay   time.Duration // Backoff waited before a retry
	Attempt int           // Consecutive failure count at the time of the outcome
}

// Backoff counts consecutive failures across attempts and turns them into
// delayed retries or a terminal failure. The counter only resets on success,
// so failures in different batches share the same budget.
type Backoff struct {
	base       time.Duration
	maxRetries int
	sleep      SleepFunc

	retryCount int
	lastErr    error
}

// NewBackoff creates a Backoff tolerating maxRetries consecutive failures,
// waiting base*2^n after the nth. Failure maxRetries+1 is terminal, so
// maxRetries=0 aborts on the first failure without waiting.
func NewBackoff(base time.Duration, maxRetries int, sleep SleepFunc) *Backoff {
	if sleep == nil {
		sleep = Sleep
	}
	return &Backoff{
		base:       base,
		maxRetries: maxRetries,
		sleep:      sleep,
	}
}

// Delay returns the wait after the nth consecutive failure: base * 2^n
func (b *Backoff) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return b.base * time.Duration(int64(1)<<uint(n))
}

// RetryCount returns the current consecutive failure count
func (b *Backoff) RetryCount() int {
	return b.retryCount
}

// LastError returns the most recent failure, if any
func (b *Backoff) LastError() error {
	return b.lastErr
}

// Reset clears the failure streak
func (b *Backoff) Reset() {
	b.retryCount = 0
	b.lastErr = nil
}

// Attempt runs fn once and classifies the result. On failure it either
// blocks for the backoff delay and reports RetryableFailure, or reports
// TerminalFailure once more than maxRetries failures happened in a row.
// Context cancellation is always terminal and does not count as a failure.
func (b *Backoff) Attempt(ctx context.Context, fn func(context.Context) error) Outcome {
	err := fn(ctx)
	if err == nil {
		b.Reset()
		return Outcome{Kind: Success}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{Kind: TerminalFailure, Cause: ctxErr, Attempt: b.retryCount}
	}

	b.retryCount++
	b.lastErr = err

	if b.retryCount > b.maxRetries {
		return Outcome{
			Kind:    TerminalFailure,
			Cause:   fmt.Errorf("%w after %d consecutive failures: %w", ErrRetriesExhausted, b.retryCount, err),
			Attempt: b.retryCount,
		}
	}

	delay := b.Delay(b.retryCount)
	if sleepErr := b.sleep(ctx, delay); sleepErr != nil {
		if errors.Is(sleepErr, context.Canceled) || errors.Is(sleepErr, context.DeadlineExceeded) {
			return Outcome{Kind: TerminalFailure, Cause: sleepErr, Attempt: b.retryCount}
		}
		return Outcome{Kind: TerminalFailure, Cause: fmt.Errorf("backoff wait failed: %w", sleepErr), Attempt: b.retryCount}
	}

	return Outcome{Kind: RetryableFailure, Cause: err, Delay: delay, Attempt: b.retryCount}
}
