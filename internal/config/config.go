// Package config provides configuration management for the messaging analyzer.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yudduy/ira/internal/models"
)

// DateLayout is the calendar-day layout used by window bounds and the archive index.
const DateLayout = "20060102"

// Selection policies for choosing a snapshot among index rows.
const (
	SelectionPriority      = "priority"
	SelectionResponseOrder = "response_order"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Configuration validation errors.
var (
	ErrWindowCount           = errors.New("analysis.windows must contain exactly two windows")
	ErrWindowMissingID       = errors.New("window id is required")
	ErrWindowInvalidDate     = errors.New("window date must be YYYYMMDD")
	ErrWindowInverted        = errors.New("window start must not be after end")
	ErrWindowsOverlap        = errors.New("before window must end before after window starts")
	ErrMissingCDXEndpoint    = errors.New("archive.cdx_endpoint is required")
	ErrMissingWebBase        = errors.New("archive.web_base is required")
	ErrInvalidMaxRetries     = errors.New("archive.max_retries must be at least 1")
	ErrInvalidTimeout        = errors.New("archive.timeout_sec must be at least 1")
	ErrInvalidRateLimit      = errors.New("archive.rate_limit_sec must be non-negative")
	ErrInvalidBackoffBase    = errors.New("archive.backoff_base_sec must be non-negative")
	ErrInvalidIndexLimit     = errors.New("archive.limit must be at least 1")
	ErrNoTargetPages         = errors.New("archive.target_pages must not be empty")
	ErrInvalidSelection      = errors.New("archive.selection must be 'priority' or 'response_order'")
	ErrInvalidTruncation     = errors.New("content.truncation_limit must be at least 1")
	ErrInvalidPromptLimit    = errors.New("llm.prompt_content_limit must be between 1 and content.truncation_limit")
	ErrInvalidProvider       = errors.New("llm.provider must be 'openai' or 'mock'")
	ErrMissingModel          = errors.New("llm.model is required")
	ErrInvalidTemperature    = errors.New("llm.temperature must be between 0 and 2")
	ErrInvalidMaxTokens      = errors.New("llm.max_tokens must be at least 1")
	ErrInvalidConcurrency    = errors.New("runner.max_concurrent must be at least 1")
	ErrInvalidOutputFormat   = errors.New("output.format must be 'csv' or 'jsonl'")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat      = errors.New("logging.format must be 'text' or 'json'")
	ErrUnknownWindow         = errors.New("unknown analysis window")
	ErrMissingAPIKey         = errors.New("api key not found")
	ErrMissingAPIKeyVariable = errors.New("llm.api_key_env is required for the openai provider")
)

// Config represents the complete analyzer configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Content  ContentConfig  `yaml:"content"`
	LLM      LLMConfig      `yaml:"llm"`
	Runner   RunnerConfig   `yaml:"runner"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AnalysisConfig holds the two comparison windows.
type AnalysisConfig struct {
	Windows []WindowConfig `yaml:"windows"`
}

// WindowConfig is the YAML form of a comparison window.
type WindowConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Description string `yaml:"description"`
}

// ArchiveConfig configures the historical-snapshot index and content fetches.
type ArchiveConfig struct {
	CDXEndpoint    string   `yaml:"cdx_endpoint"`
	WebBase        string   `yaml:"web_base"`
	UserAgent      string   `yaml:"user_agent"`
	Selection      string   `yaml:"selection"`
	UIMarker       string   `yaml:"ui_marker"`
	TargetPages    []string `yaml:"target_pages"`
	RateLimitSec   float64  `yaml:"rate_limit_sec"`
	BackoffBaseSec float64  `yaml:"backoff_base_sec"`
	TimeoutSec     int      `yaml:"timeout_sec"`
	MaxRetries     int      `yaml:"max_retries"`
	Limit          int      `yaml:"limit"`
}

// ContentConfig configures text extraction.
type ContentConfig struct {
	TruncationLimit int `yaml:"truncation_limit"`
	MaxBodyKb       int `yaml:"max_body_kb"`
}

// LLMConfig configures the change characterization call.
type LLMConfig struct {
	Provider           string  `yaml:"provider"`
	Model              string  `yaml:"model"`
	APIKeyEnv          string  `yaml:"api_key_env"`
	BaseURL            string  `yaml:"base_url"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
	PromptContentLimit int     `yaml:"prompt_content_limit"`
}

// RunnerConfig configures batch execution.
type RunnerConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Report string `yaml:"report"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// RetryPolicy defines archive index retry behavior.
type RetryPolicy struct {
	MaxAttempts int
	Pacing      time.Duration
	BackoffBase time.Duration
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Windows: []WindowConfig{
				{
					ID:          "pre_ira",
					Name:        "Pre-IRA Baseline (Annual)",
					Start:       "20220101",
					End:         "20221231",
					Description: "Full Year 2022 - Pre-IRA corporate messaging baseline",
				},
				{
					ID:          "post_ira",
					Name:        "Post-IRA Implementation (Annual)",
					Start:       "20230101",
					End:         "20231231",
					Description: "Full Year 2023 - Post-IRA implementation period",
				},
			},
		},
		Archive: ArchiveConfig{
			CDXEndpoint: "http://web.archive.org/cdx/search/cdx",
			WebBase:     "https://web.archive.org/web",
			UserAgent:   "Academic Research - IRA Corporate Analysis",
			Selection:   SelectionPriority,
			UIMarker:    "wm-",
			TargetPages: []string{
				"/", "/about", "/company", "/our-company", "/mission",
				"/products", "/services", "/solutions", "/technology",
				"/sustainability", "/environmental", "/esg",
			},
			RateLimitSec:   2.0,
			BackoffBaseSec: 1.0,
			TimeoutSec:     45,
			MaxRetries:     3,
			Limit:          10,
		},
		Content: ContentConfig{
			TruncationLimit: 8000,
			MaxBodyKb:       8192,
		},
		LLM: LLMConfig{
			Provider:           ProviderOpenAI,
			Model:              "gpt-4.1-nano",
			APIKeyEnv:          "OPENAI_API_KEY",
			Temperature:        0.1,
			MaxTokens:          1000,
			PromptContentLimit: 3500,
		},
		Runner: RunnerConfig{
			MaxConcurrent: 2,
		},
		Output: OutputConfig{
			Format: "csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "ira_analysis.log",
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.Windows(); err != nil {
		return err
	}

	if err := c.Archive.validate(); err != nil {
		return err
	}

	if c.Content.TruncationLimit < 1 {
		return ErrInvalidTruncation
	}

	if c.LLM.PromptContentLimit < 1 || c.LLM.PromptContentLimit > c.Content.TruncationLimit {
		return ErrInvalidPromptLimit
	}

	if err := c.LLM.validate(); err != nil {
		return err
	}

	if c.Runner.MaxConcurrent < 1 {
		return ErrInvalidConcurrency
	}

	if c.Output.Format != "csv" && c.Output.Format != "jsonl" {
		return ErrInvalidOutputFormat
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

func (a *ArchiveConfig) validate() error {
	if a.CDXEndpoint == "" {
		return ErrMissingCDXEndpoint
	}

	if a.WebBase == "" {
		return ErrMissingWebBase
	}

	if a.MaxRetries < 1 {
		return ErrInvalidMaxRetries
	}

	if a.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if a.RateLimitSec < 0 {
		return ErrInvalidRateLimit
	}

	if a.BackoffBaseSec < 0 {
		return ErrInvalidBackoffBase
	}

	if a.Limit < 1 {
		return ErrInvalidIndexLimit
	}

	if len(a.TargetPages) == 0 {
		return ErrNoTargetPages
	}

	if a.Selection != SelectionPriority && a.Selection != SelectionResponseOrder {
		return ErrInvalidSelection
	}

	return nil
}

func (l *LLMConfig) validate() error {
	switch l.Provider {
	case ProviderOpenAI:
		if l.APIKeyEnv == "" {
			return ErrMissingAPIKeyVariable
		}
	case ProviderMock:
	default:
		return ErrInvalidProvider
	}

	if l.Model == "" {
		return ErrMissingModel
	}

	if l.Temperature < 0 || l.Temperature > 2 {
		return ErrInvalidTemperature
	}

	if l.MaxTokens < 1 {
		return ErrInvalidMaxTokens
	}

	return nil
}

// Windows parses the configured windows into their immutable form, in before/after order.
func (c *Config) Windows() ([]models.Window, error) {
	if len(c.Analysis.Windows) != 2 {
		return nil, ErrWindowCount
	}

	windows := make([]models.Window, 0, 2)

	for i, wc := range c.Analysis.Windows {
		if wc.ID == "" {
			return nil, fmt.Errorf("%w: windows[%d]", ErrWindowMissingID, i)
		}

		start, err := time.Parse(DateLayout, wc.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.start %q", ErrWindowInvalidDate, wc.ID, wc.Start)
		}

		end, err := time.Parse(DateLayout, wc.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.end %q", ErrWindowInvalidDate, wc.ID, wc.End)
		}

		if start.After(end) {
			return nil, fmt.Errorf("%w: %s", ErrWindowInverted, wc.ID)
		}

		windows = append(windows, models.Window{
			ID:          wc.ID,
			Name:        wc.Name,
			Start:       start,
			End:         end,
			Description: wc.Description,
		})
	}

	if !windows[0].End.Before(windows[1].Start) {
		return nil, ErrWindowsOverlap
	}

	return windows, nil
}

// Window returns the window with the given id.
func (c *Config) Window(id string) (models.Window, error) {
	windows, err := c.Windows()
	if err != nil {
		return models.Window{}, err
	}

	for _, w := range windows {
		if w.ID == id {
			return w, nil
		}
	}

	return models.Window{}, fmt.Errorf("%w: %s", ErrUnknownWindow, id)
}

// RetryPolicy returns the archive index retry policy.
func (c *Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.Archive.MaxRetries,
		Pacing:      seconds(c.Archive.RateLimitSec),
		BackoffBase: seconds(c.Archive.BackoffBaseSec),
	}
}

// GetRetryDelay returns the backoff after a failed attempt (0-based): base * 2^attempt.
func (rp RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	return time.Duration(float64(rp.BackoffBase) * math.Pow(2, float64(attempt)))
}

// GetTimeout returns the per-call network deadline.
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Archive.TimeoutSec) * time.Second
}

// APIKey resolves the completion service credential from the environment.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.LLM.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%w: set %s in a .env file or the environment", ErrMissingAPIKey, c.LLM.APIKeyEnv)
	}

	return key, nil
}

// DefaultOutputPath returns a timestamped results path.
func (c *Config) DefaultOutputPath(now time.Time) string {
	if c.Output.Path != "" {
		return c.Output.Path
	}

	return fmt.Sprintf("ira_analysis_results_%s.%s", now.Format("20060102_150405"), c.Output.Format)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Windows: %d, MaxRetries: %d, Concurrency: %d, Model: %s}",
		len(c.Analysis.Windows),
		c.Archive.MaxRetries,
		c.Runner.MaxConcurrent,
		c.LLM.Model,
	)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
