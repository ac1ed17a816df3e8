package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Run.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Run.BatchSize)
	}

	if cfg.Run.InterBatchDelay.Duration != time.Second {
		t.Errorf("expected InterBatchDelay=1s, got %v", cfg.Run.InterBatchDelay)
	}

	if cfg.Run.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Run.MaxRetries)
	}

	if cfg.Run.OlderThanYears != 2 {
		t.Errorf("expected OlderThanYears=2, got %d", cfg.Run.OlderThanYears)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "zero batch size",
			modify: func(c *Config) {
				c.Run.BatchSize = 0
			},
			wantErr: true,
		},
		{
			name: "batch size above list limit",
			modify: func(c *Config) {
				c.Run.BatchSize = 501
			},
			wantErr: true,
		},
		{
			name: "negative max retries",
			modify: func(c *Config) {
				c.Run.MaxRetries = -1
			},
			wantErr: true,
		},
		{
			name: "zero max retries is allowed",
			modify: func(c *Config) {
				c.Run.MaxRetries = 0
			},
			wantErr: false,
		},
		{
			name: "unbounded safety limit",
			modify: func(c *Config) {
				c.Run.SafetyLimit = 0
			},
			wantErr: false,
		},
		{
			name: "negative days",
			modify: func(c *Config) {
				c.Run.OlderThanDays = -3
			},
			wantErr: true,
		},
		{
			name: "missing credentials path",
			modify: func(c *Config) {
				c.Gmail.CredentialsPath = ""
			},
			wantErr: true,
		},
		{
			name: "throttle without burst",
			modify: func(c *Config) {
				c.Gmail.Burst = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		result, err := expandPath(tt.input)
		if err != nil {
			t.Errorf("expandPath(%q) error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[gmail]
credentials_path = "/etc/mailprune/credentials.json"
token_path = "/var/lib/mailprune/token.json"

[run]
batch_size = 50
inter_batch_delay = "3s"
safety_limit = 120
max_retries = 3
older_than_years = 0
older_than_days = 90
keep_starred = false
extra_query = "-label:keep"

[log]
quiet = true
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Run.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.Run.BatchSize)
	}
	if cfg.Run.InterBatchDelay.Duration != 3*time.Second {
		t.Errorf("InterBatchDelay = %v, want 3s", cfg.Run.InterBatchDelay)
	}
	if cfg.Run.SafetyLimit != 120 {
		t.Errorf("SafetyLimit = %d, want 120", cfg.Run.SafetyLimit)
	}
	if cfg.Run.OlderThanDays != 90 || cfg.Run.OlderThanYears != 0 {
		t.Errorf("age = %dy %dd, want 0y 90d", cfg.Run.OlderThanYears, cfg.Run.OlderThanDays)
	}
	if cfg.Run.KeepStarred {
		t.Error("KeepStarred = true, want false")
	}
	if !cfg.Log.Quiet {
		t.Error("Quiet = false, want true")
	}
	// Unset keys keep their defaults
	if cfg.Gmail.RequestsPerSecond != 10 {
		t.Errorf("RequestsPerSecond = %v, want default 10", cfg.Gmail.RequestsPerSecond)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad duration", "[run]\ninter_batch_delay = \"soon\"\n"},
		{"bad toml", "[run\n"},
		{"invalid value", "[run]\nbatch_size = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Run.BatchSize != Default().Run.BatchSize {
		t.Errorf("BatchSize = %d, want default", cfg.Run.BatchSize)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigForTest), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Run.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", cfg.Run.BatchSize)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of missing file error = nil")
	}
}

func TestEncodeRoundTripsDuration(t *testing.T) {
	cfg := Default()
	cfg.Run.InterBatchDelay = Duration{1500 * time.Millisecond}

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v\n%s", err, data)
	}
	if parsed.Run.InterBatchDelay.Duration != 1500*time.Millisecond {
		t.Errorf("InterBatchDelay = %v, want 1.5s", parsed.Run.InterBatchDelay)
	}
}

func TestRunConfig(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	section := Default().Run
	section.OlderThanYears = 1
	section.OlderThanDays = 10
	section.ExtraQuery = "-label:keep"

	rc := section.RunConfig(sweep.ActionTrash, now)

	if err := rc.Validate(); err != nil {
		t.Fatalf("RunConfig().Validate() error: %v", err)
	}
	wantCutoff := time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC)
	if !rc.Cutoff.Equal(wantCutoff) {
		t.Errorf("Cutoff = %v, want %v", rc.Cutoff, wantCutoff)
	}
	if rc.BatchSize != 100 || rc.MaxRetries != 3 || rc.InterBatchDelay != time.Second {
		t.Errorf("unexpected run config %+v", rc)
	}
	if !rc.Filter.KeepStarred || rc.Filter.Extra != "-label:keep" {
		t.Errorf("unexpected filter %+v", rc.Filter)
	}
}

const defaultConfigForTest = `
[gmail]
credentials_path = "/tmp/credentials.json"
token_path = "/tmp/token.json"

[run]
batch_size = 25
`
