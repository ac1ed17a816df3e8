package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// maxBatchSize is the largest page Gmail's thread listing returns
const maxBatchSize = 500

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'mailprune config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// LoadOrDefault loads the config file, falling back to defaults when it
// does not exist
func LoadOrDefault(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.expandPaths(); err != nil {
			return nil, fmt.Errorf("failed to expand paths: %w", err)
		}
		return cfg, nil
	}

	return Load(expandedPath)
}

// Parse decodes TOML on top of the defaults, expands paths and validates
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Encode renders the config as TOML
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	var err error

	c.Gmail.CredentialsPath, err = expandPath(c.Gmail.CredentialsPath)
	if err != nil {
		return err
	}

	c.Gmail.TokenPath, err = expandPath(c.Gmail.TokenPath)
	if err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Gmail validation
	if c.Gmail.CredentialsPath == "" {
		errs = append(errs, errors.New("gmail.credentials_path is required"))
	}
	if c.Gmail.TokenPath == "" {
		errs = append(errs, errors.New("gmail.token_path is required"))
	}
	if c.Gmail.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("gmail.requests_per_second must not be negative (0 = unthrottled)"))
	}
	if c.Gmail.RequestsPerSecond > 0 && c.Gmail.Burst < 1 {
		errs = append(errs, errors.New("gmail.burst must be at least 1"))
	}

	errs = append(errs, c.Run.validate()...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (r RunSection) validate() []error {
	var errs []error

	if r.BatchSize < 1 || r.BatchSize > maxBatchSize {
		errs = append(errs, fmt.Errorf("run.batch_size must be between 1 and %d", maxBatchSize))
	}
	if r.InterBatchDelay.Duration < 0 {
		errs = append(errs, errors.New("run.inter_batch_delay must not be negative"))
	}
	if r.SafetyLimit < 0 {
		errs = append(errs, errors.New("run.safety_limit must not be negative (0 = unbounded)"))
	}
	if r.MaxRetries < 0 {
		errs = append(errs, errors.New("run.max_retries must not be negative"))
	}
	if r.OlderThanYears < 0 {
		errs = append(errs, errors.New("run.older_than_years must not be negative"))
	}
	if r.OlderThanDays < 0 {
		errs = append(errs, errors.New("run.older_than_days must not be negative"))
	}

	return errs
}

// Validate checks the run section on its own, after flag overrides
func (r RunSection) Validate() error {
	return errors.Join(r.validate()...)
}

// EnsureDirectories creates necessary directories for the token cache
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Gmail.TokenPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
