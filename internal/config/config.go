package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orienta-za/orienta/internal/errors"
)

// Config holds client configuration
type Config struct {
	// APIURL is the base URL of the Orienta backend
	APIURL string `yaml:"api_url"`

	// RequestTimeout bounds every HTTP request issued by the client
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// SubmitTimeout bounds a single intake answer submission. A
	// submission that exceeds it is treated as failed and the step is
	// left unchanged so the learner can resubmit.
	SubmitTimeout time.Duration `yaml:"submit_timeout"`

	// Log configures structured logging
	Log LogConfig `yaml:"log"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		RequestTimeout: 30 * time.Second,
		SubmitTimeout:  15 * time.Second,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Dir returns the directory holding the config file and stored
// credentials, creating nothing. It honours ORIENTA_CONFIG_DIR for
// tests and falls back to ~/.orienta.
func Dir() (string, error) {
	if dir := os.Getenv("ORIENTA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".orienta"), nil
}

// Load reads the config file from the config directory, applies
// environment overrides, and validates the result. A missing file is
// not an error; defaults are used.
func Load() (Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeConfigRead, "locate config directory", err)
	}

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults apply.
	case err != nil:
		return cfg, errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("read %s", path), err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("parse %s", path), err).
				WithSuggestion("Check the YAML syntax of the config file")
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto cfg
func applyEnv(cfg *Config) {
	if v := os.Getenv("ORIENTA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("ORIENTA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ORIENTA_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks the configuration for obvious mistakes
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("api_url %q is not a valid URL", c.APIURL)).
			WithSuggestion("Use a full URL such as https://api.orienta.example.com")
	}

	if c.SubmitTimeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "submit_timeout must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "request_timeout must be positive")
	}

	return nil
}
