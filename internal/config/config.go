// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for values left unset in files, environment and flags.
const (
	DefaultDatabaseURL         = "content_analysis.db"
	DefaultPort                = 8080
	DefaultFetchTimeoutSeconds = 10
	DefaultMaxTokens           = 15000
	DefaultTemperature         = 0.7
	DefaultKeySentences        = 5
	DefaultTopWords            = 10
	DefaultLogLevel            = "info"
)

// Config is the application configuration. It can be loaded from a JSON or
// YAML file, overridden from the environment and finally from CLI flags.
type Config struct {
	// LLM
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`         // Gemini API key
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`             // model name or tier
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`   // output token cap
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"` // sampling temperature

	// Storage and serving
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // postgres:// URL or SQLite path
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`

	// Fetching
	FetchTimeoutSeconds int  `json:"fetch_timeout_seconds,omitempty" yaml:"fetch_timeout_seconds,omitempty"`
	UseBrowser          bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // headless fallback for script-rendered pages

	// Analysis
	KeySentences  int    `json:"key_sentences,omitempty" yaml:"key_sentences,omitempty"`
	TopWords      int    `json:"top_words,omitempty" yaml:"top_words,omitempty"`
	StopwordsFile string `json:"stopwords_file,omitempty" yaml:"stopwords_file,omitempty"` // one word per line

	// Output
	LogLevel       string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogDevelopment bool   `json:"log_development,omitempty" yaml:"log_development,omitempty"`
	Verbose        bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns a Config holding every default value.
func Defaults() Config {
	return Config{
		MaxTokens:           DefaultMaxTokens,
		Temperature:         DefaultTemperature,
		DatabaseURL:         DefaultDatabaseURL,
		Port:                DefaultPort,
		FetchTimeoutSeconds: DefaultFetchTimeoutSeconds,
		KeySentences:        DefaultKeySentences,
		TopWords:            DefaultTopWords,
		LogLevel:            DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// ApplyEnv overrides fields from environment variables that are set.
// Malformed numeric values are reported rather than ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := getenv("GEMINI_MODEL"); v != "" {
		c.Model = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be an integer, got %q", v)
		}
		c.Port = port
	}
	if v := getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: FETCH_TIMEOUT_SECONDS must be an integer, got %q", v)
		}
		c.FetchTimeoutSeconds = secs
	}
	if v := getenv("USE_BROWSER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: USE_BROWSER must be a boolean, got %q", v)
		}
		c.UseBrowser = b
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Required fields such as the API key are checked where they are used.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("config error: 'max_tokens' must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'fetch_timeout_seconds' must be non-negative")
	}
	if c.KeySentences < 0 {
		return fmt.Errorf("config error: 'key_sentences' must be non-negative")
	}
	if c.TopWords < 0 {
		return fmt.Errorf("config error: 'top_words' must be non-negative")
	}

	if c.StopwordsFile != "" {
		if _, err := os.Stat(c.StopwordsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: stopwords file not found: %s", c.StopwordsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.StopwordsFile == "" {
		result.StopwordsFile = defaults.StopwordsFile
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	if result.MaxTokens == 0 {
		result.MaxTokens = defaults.MaxTokens
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.FetchTimeoutSeconds == 0 {
		result.FetchTimeoutSeconds = defaults.FetchTimeoutSeconds
	}
	if result.KeySentences == 0 {
		result.KeySentences = defaults.KeySentences
	}
	if result.TopWords == 0 {
		result.TopWords = defaults.TopWords
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}

	// Bools cannot distinguish unset from false; CLI flags decide them.

	return result
}

// FetchTimeout returns the per-URL fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadStopwords reads a stop-word list with one word per line. Blank lines and
// lines starting with # are skipped; words are lowercased.
func LoadStopwords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stopwords file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords file %s: %w", path, err)
	}
	return words, nil
}
