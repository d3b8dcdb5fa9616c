package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is the fixed browser identity sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/133.0.0.0 Safari/537.36 Edg/133.0.0.0"

// Config holds all configuration options for the web downloader
type Config struct {
	// Page and element selection
	Target TargetConfig `yaml:"target"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// TargetConfig holds the page to crawl and the element kind to extract
type TargetConfig struct {
	URL         string `yaml:"url"`
	ElementKind string `yaml:"element_kind"`
	UserAgent   string `yaml:"user_agent"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	Strategy          string `yaml:"strategy"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			ElementKind: "image",
			UserAgent:   DefaultUserAgent,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 10,
			Strategy:          "interval",
		},
		Output: OutputConfig{
			Directory: "./downloads",
		},
		Download: DownloadConfig{
			ConcurrentDownloads: runtime.NumCPU(),
			RequestTimeout:      10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration: defaults, then an optional
// YAML file, then a .env file and environment variables, then command
// line flag overrides, and finally validation.
func Load(path string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	// .env values become visible to LoadFromEnv; a missing file is fine
	_ = godotenv.Load()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	cfg.LoadFromEnv()
	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from WEBDL_* environment variables
func (c *Config) LoadFromEnv() {
	if pageURL := os.Getenv("WEBDL_URL"); pageURL != "" {
		c.Target.URL = pageURL
	}
	if kind := os.Getenv("WEBDL_ELEMENT"); kind != "" {
		c.Target.ElementKind = kind
	}
	if ua := os.Getenv("WEBDL_USER_AGENT"); ua != "" {
		c.Target.UserAgent = ua
	}
	if rpm := os.Getenv("WEBDL_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if strategy := os.Getenv("WEBDL_RATE_STRATEGY"); strategy != "" {
		c.RateLimit.Strategy = strategy
	}
	if outputDir := os.Getenv("WEBDL_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if concurrent := os.Getenv("WEBDL_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}
	if logLevel := os.Getenv("WEBDL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".webdl.yaml",
		".webdl.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "webdl", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".webdl.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if pageURL, ok := flags["url"].(string); ok && pageURL != "" {
		c.Target.URL = pageURL
	}
	if kind, ok := flags["element"].(string); ok && kind != "" {
		c.Target.ElementKind = kind
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if strategy, ok := flags["rate-strategy"].(string); ok && strategy != "" {
		c.RateLimit.Strategy = strategy
	}
	if concurrent, ok := flags["concurrent-downloads"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if timeout, ok := flags["request-timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.RequestTimeout = timeout
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Target.URL == "" {
		errs = append(errs, errors.New("page URL is required"))
	}
	if c.Target.ElementKind == "" {
		errs = append(errs, errors.New("element kind is required"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	switch strings.ToLower(c.RateLimit.Strategy) {
	case "", "interval", "burst", "window":
	default:
		errs = append(errs, errors.New("invalid rate limit strategy"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
