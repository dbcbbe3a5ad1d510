package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob for FinSightGo. Credentials are never
// persisted; they carry `json:"-"` and come from the environment only.
type Config struct {
	// Credentials (environment only)
	FMPAPIKey    string `json:"-"`
	OpenAIAPIKey string `json:"-"`

	// Agent platform
	OpenAIBaseURL string `json:"openai_base_url"`
	Model         string `json:"model"`
	Instructions  string `json:"instructions"`

	// Orchestration loop
	PollIntervalSec   int `json:"poll_interval_seconds"`
	MaxPollIterations int `json:"max_poll_iterations"`

	// HTTP clients
	HTTPTimeoutSec int `json:"http_timeout_seconds"`

	// Quote cache
	DataCacheDir string `json:"data_cache_dir"`
	CacheEnabled bool   `json:"cache_enabled"`

	Debug bool `json:"debug"`
}

const defaultInstructions = "Act as a financial analyst by accessing detailed financial data " +
	"through the Financial Modeling Prep API. Your capabilities include analyzing key metrics, " +
	"comprehensive financial statements, vital financial ratios, and tracking financial growth trends."

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	return DefaultConfigWithRoot(currentDir)
}

// DefaultConfigWithRoot builds the default configuration rooted at dir,
// merges a local .env file and finally the process environment on top.
func DefaultConfigWithRoot(dir string) *Config {
	cfg := &Config{
		OpenAIBaseURL: "https://api.openai.com/v1",
		Model:         "gpt-4o-mini",
		Instructions:  defaultInstructions,

		PollIntervalSec:   5,
		MaxPollIterations: 60,
		HTTPTimeoutSec:    30,

		DataCacheDir: filepath.Join(dir, "data", "cache"),
		CacheEnabled: true,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("FMP_API_KEY"); val != "" {
		c.FMPAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		c.OpenAIBaseURL = val
	}
	if val := os.Getenv("FINSIGHT_MODEL"); val != "" {
		c.Model = val
	}
	if val := os.Getenv("FINSIGHT_INSTRUCTIONS"); val != "" {
		c.Instructions = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("POLL_INTERVAL_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.PollIntervalSec = v
		}
	}
	if val := os.Getenv("MAX_POLL_ITERATIONS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxPollIterations = v
		}
	}
	if val := os.Getenv("HTTP_TIMEOUT_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.HTTPTimeoutSec = v
		}
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("FINSIGHT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// PollInterval is the wait between run status polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// HTTPTimeout bounds every outbound HTTP request.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// Validate checks structural sanity. Credentials are checked separately by
// ValidateCredentials so that offline commands keep working without keys.
func (c *Config) Validate() error {
	if c.OpenAIBaseURL == "" {
		return fmt.Errorf("openai_base_url must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.PollIntervalSec <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSec)
	}
	if c.MaxPollIterations <= 0 {
		return fmt.Errorf("max_poll_iterations must be positive, got %d", c.MaxPollIterations)
	}
	if c.HTTPTimeoutSec <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive, got %d", c.HTTPTimeoutSec)
	}
	return nil
}

// ValidateCredentials ensures both provider credentials are present.
func (c *Config) ValidateCredentials() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not configured")
	}
	if c.FMPAPIKey == "" {
		return fmt.Errorf("FMP_API_KEY not configured")
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	if c.DataCacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.DataCacheDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", c.DataCacheDir, err)
	}
	return nil
}
