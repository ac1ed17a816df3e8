package sweep

import (
	"testing"
	"time"
)

func TestProgress_ETAAt(t *testing.T) {
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		p       Progress
		elapsed time.Duration
		want    time.Duration
	}{
		{
			name:    "sub-second remainder",
			p:       Progress{Current: 100, Limit: 150, StartedAt: start},
			elapsed: 1500 * time.Millisecond,
			want:    750 * time.Millisecond,
		},
		{
			name:    "whole seconds",
			p:       Progress{Current: 100, Limit: 400, StartedAt: start},
			elapsed: 10 * time.Second,
			want:    30 * time.Second,
		},
		{
			name:    "unbounded",
			p:       Progress{Current: 100, StartedAt: start},
			elapsed: time.Second,
			want:    0,
		},
		{
			name:    "limit reached",
			p:       Progress{Current: 150, Limit: 150, StartedAt: start},
			elapsed: time.Second,
			want:    0,
		},
		{
			name:    "nothing processed",
			p:       Progress{Limit: 150, StartedAt: start},
			elapsed: time.Second,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.ETAAt(start.Add(tt.elapsed))
			if diff := got - tt.want; diff < -time.Millisecond || diff > time.Millisecond {
				t.Errorf("ETAAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress_Percentage(t *testing.T) {
	if got := (Progress{Current: 50, Limit: 200}).Percentage(); got != 25 {
		t.Errorf("Percentage() = %d, want 25", got)
	}
	if got := (Progress{Current: 250, Limit: 200}).Percentage(); got != 100 {
		t.Errorf("Percentage() over limit = %d, want 100", got)
	}
	if got := (Progress{Current: 50}).Percentage(); got != 0 {
		t.Errorf("Percentage() unbounded = %d, want 0", got)
	}
}
