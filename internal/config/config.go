package config

import (
	"fmt"
	"time"

	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

// Config represents the application configuration
type Config struct {
	Gmail GmailConfig `toml:"gmail"`
	Run   RunSection  `toml:"run"`
	Log   LogConfig   `toml:"log"`
}

// GmailConfig contains Gmail-specific settings
type GmailConfig struct {
	CredentialsPath   string  `toml:"credentials_path"`
	TokenPath         string  `toml:"token_path"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// RunSection contains the batch loop settings
type RunSection struct {
	BatchSize       int      `toml:"batch_size"`
	InterBatchDelay Duration `toml:"inter_batch_delay"`
	SafetyLimit     int      `toml:"safety_limit"` // 0 = unbounded
	MaxRetries      int      `toml:"max_retries"`
	OlderThanYears  int      `toml:"older_than_years"`
	OlderThanDays   int      `toml:"older_than_days"`
	KeepStarred     bool     `toml:"keep_starred"`
	KeepImportant   bool     `toml:"keep_important"`
	ExtraQuery      string   `toml:"extra_query"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Quiet bool `toml:"quiet"` // Suppress INFO lines
}

// Duration is a time.Duration read from strings like "3s" or "500ms"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Cutoff returns the absolute cutoff for the configured age
func (r RunSection) Cutoff(now time.Time) time.Time {
	return sweep.Cutoff(now, r.OlderThanYears, r.OlderThanDays)
}

// RunConfig builds the immutable per-run configuration
func (r RunSection) RunConfig(action sweep.Action, now time.Time) sweep.RunConfig {
	return sweep.RunConfig{
		BatchSize:       r.BatchSize,
		InterBatchDelay: r.InterBatchDelay.Duration,
		SafetyLimit:     r.SafetyLimit,
		MaxRetries:      r.MaxRetries,
		Cutoff:          r.Cutoff(now),
		Action:          action,
		Filter: sweep.QueryOptions{
			KeepStarred:   r.KeepStarred,
			KeepImportant: r.KeepImportant,
			Extra:         r.ExtraQuery,
		},
	}
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Gmail: GmailConfig{
			CredentialsPath:   "~/.config/mailprune/credentials.json",
			TokenPath:         "~/.config/mailprune/token.json",
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Run: RunSection{
			BatchSize:       100,
			InterBatchDelay: Duration{time.Second},
			SafetyLimit:     5000,
			MaxRetries:      3,
			OlderThanYears:  2,
			KeepStarred:     true,
		},
		Log: LogConfig{
			Quiet: false,
		},
	}
}
