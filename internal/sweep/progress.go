package sweep

import "time"

// ProgressPhase represents what the run is doing
type ProgressPhase string

const (
	PhaseBatchDone ProgressPhase = "batch_done"
	PhaseRetrying  ProgressPhase = "retrying"
	PhaseCounting  ProgressPhase = "counting"
	PhaseSampling  ProgressPhase = "sampling"
)

// Progress is a snapshot reported after each step
type Progress struct {
	Phase     ProgressPhase
	Batch     int           // Batches completed so far
	Current   int           // Conversations processed or counted so far
	Limit     int           // Safety limit or count cap (0 = unbounded)
	PageSize  int           // Size of the page just handled
	Delay     time.Duration // Backoff delay (PhaseRetrying only)
	StartedAt time.Time     // When the run started (for ETA calculation)
}

// ProgressCallback is called with progress updates during a run
type ProgressCallback func(Progress)

// ETA returns the estimated time until the limit is reached
func (p Progress) ETA() time.Duration {
	return p.ETAAt(time.Now())
}

// ETAAt is ETA measured at now
func (p Progress) ETAAt(now time.Time) time.Duration {
	if p.Current == 0 || p.Limit == 0 || p.StartedAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(p.StartedAt)
	if elapsed <= 0 {
		return 0
	}
	rate := float64(p.Current) / elapsed.Seconds()
	if rate <= 0 {
		return 0
	}
	remaining := p.Limit - p.Current
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}

// Percentage returns completion against the limit (0-100)
func (p Progress) Percentage() int {
	if p.Limit == 0 {
		return 0
	}
	pct := (p.Current * 100) / p.Limit
	if pct > 100 {
		return 100
	}
	return pct
}
