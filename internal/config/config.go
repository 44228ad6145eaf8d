// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/storage"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or come from flags and the environment.
type Config struct {
	// Server
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Storage
	StorageBackend string `json:"storage_backend,omitempty" yaml:"storage_backend,omitempty"` // file, memory or postgres
	StorageDir     string `json:"storage_dir,omitempty" yaml:"storage_dir,omitempty"`
	StorageKey     string `json:"storage_key,omitempty" yaml:"storage_key,omitempty"`
	DatabaseURL    string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	SaveDebounceMS int    `json:"save_debounce_ms,omitempty" yaml:"save_debounce_ms,omitempty"`

	// Assistant
	APIKey                 string `json:"api_key,omitempty" yaml:"api_key,omitempty"` // Gemini API key
	Model                  string `json:"model,omitempty" yaml:"model,omitempty"`
	MaxJobDescriptionChars int    `json:"max_job_description_chars,omitempty" yaml:"max_job_description_chars,omitempty"`

	// Payment
	PaymentEndpoint    string `json:"payment_endpoint,omitempty" yaml:"payment_endpoint,omitempty"`
	PaymentLink        string `json:"payment_link,omitempty" yaml:"payment_link,omitempty"`
	PollIntervalMS     int    `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty"`
	ConfirmDelayMS     int    `json:"confirm_delay_ms,omitempty" yaml:"confirm_delay_ms,omitempty"`
	MaxPollMinutes     int    `json:"max_poll_minutes,omitempty" yaml:"max_poll_minutes,omitempty"` // 0 polls until closed
	MinReferenceLength int    `json:"min_reference_length,omitempty" yaml:"min_reference_length,omitempty"`

	// Job postings
	JobCacheHours int  `json:"job_cache_hours,omitempty" yaml:"job_cache_hours,omitempty"`
	UseBrowser    bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Use headless browser for SPA job boards
	Verbose       bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                   8080,
		StorageBackend:         BackendFile,
		StorageDir:             ".hashresume",
		StorageKey:             storage.DefaultKey,
		SaveDebounceMS:         500,
		MaxJobDescriptionChars: 5000,
		PollIntervalMS:         5000,
		ConfirmDelayMS:         1000,
		MinReferenceLength:     6,
		JobCacheHours:          24,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Zero values are accepted since MergeWithDefaults fills them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch c.StorageBackend {
	case "", BackendFile, BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config error: unknown 'storage_backend' %q", c.StorageBackend)
	}

	nonNegative := map[string]int{
		"save_debounce_ms":          c.SaveDebounceMS,
		"max_job_description_chars": c.MaxJobDescriptionChars,
		"poll_interval_ms":          c.PollIntervalMS,
		"confirm_delay_ms":          c.ConfirmDelayMS,
		"max_poll_minutes":          c.MaxPollMinutes,
		"min_reference_length":      c.MinReferenceLength,
		"job_cache_hours":           c.JobCacheHours,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}

	if c.PaymentEndpoint != "" {
		u, err := url.Parse(c.PaymentEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'payment_endpoint' must be an http(s) URL")
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.StorageBackend, defaults.StorageBackend)
	mergeString(&result.StorageDir, defaults.StorageDir)
	mergeString(&result.StorageKey, defaults.StorageKey)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.PaymentEndpoint, defaults.PaymentEndpoint)
	mergeString(&result.PaymentLink, defaults.PaymentLink)

	// Int fields: use default if zero
	mergeInt(&result.Port, defaults.Port)
	mergeInt(&result.SaveDebounceMS, defaults.SaveDebounceMS)
	mergeInt(&result.MaxJobDescriptionChars, defaults.MaxJobDescriptionChars)
	mergeInt(&result.PollIntervalMS, defaults.PollIntervalMS)
	mergeInt(&result.ConfirmDelayMS, defaults.ConfirmDelayMS)
	mergeInt(&result.MaxPollMinutes, defaults.MaxPollMinutes)
	mergeInt(&result.MinReferenceLength, defaults.MinReferenceLength)
	mergeInt(&result.JobCacheHours, defaults.JobCacheHours)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() error {
	stringVars := map[string]*string{
		"GEMINI_API_KEY":   &c.APIKey,
		"GEMINI_MODEL":     &c.Model,
		"DATABASE_URL":     &c.DatabaseURL,
		"PAYMENT_ENDPOINT": &c.PaymentEndpoint,
		"PAYMENT_LINK":     &c.PaymentLink,
		"STORAGE_DIR":      &c.StorageDir,
		"STORAGE_BACKEND":  &c.StorageBackend,
		"STORAGE_KEY":      &c.StorageKey,
	}
	for key, dst := range stringVars {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"PORT":             &c.Port,
		"POLL_INTERVAL_MS": &c.PollIntervalMS,
		"SAVE_DEBOUNCE_MS": &c.SaveDebounceMS,
	}
	for key, dst := range intVars {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

// QuietPeriod is the save debounce interval.
func (c *Config) QuietPeriod() time.Duration {
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

// JobCacheTTL is how long fetched job postings are reused.
func (c *Config) JobCacheTTL() time.Duration {
	return time.Duration(c.JobCacheHours) * time.Hour
}

// FlowConfig returns the payment flow settings.
func (c *Config) FlowConfig() payment.FlowConfig {
	return payment.FlowConfig{
		PollInterval:       time.Duration(c.PollIntervalMS) * time.Millisecond,
		ConfirmDelay:       time.Duration(c.ConfirmDelayMS) * time.Millisecond,
		MaxPollDuration:    time.Duration(c.MaxPollMinutes) * time.Minute,
		MinReferenceLength: c.MinReferenceLength,
		PaymentLink:        c.PaymentLink,
	}
}
