package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"model": "gemini-2.5-flash",
		"database_url": "postgres://localhost/content",
		"port": 9090,
		"key_sentences": 7,
		"use_browser": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, "postgres://localhost/content", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 7, cfg.KeySentences)
	assert.True(t, cfg.UseBrowser)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "max_tokens: 2000\ntemperature: 0.2\nlog_level: debug\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yml", "port: [not a number")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":        "secret",
		"DATABASE_URL":          "postgres://db/app",
		"PORT":                  "3000",
		"FETCH_TIMEOUT_SECONDS": "5",
		"USE_BROWSER":           "true",
	}
	cfg := Defaults()

	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "postgres://db/app", cfg.DatabaseURL)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout())
	assert.True(t, cfg.UseBrowser)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	cfg := Defaults()
	err := cfg.ApplyEnv(func(k string) string {
		if k == "PORT" {
			return "eighty"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"negative tokens", Config{MaxTokens: -1}, "max_tokens"},
		{"port range", Config{Port: 70000}, "port"},
		{"temperature", Config{Temperature: 3}, "temperature"},
		{"negative timeout", Config{FetchTimeoutSeconds: -2}, "fetch_timeout_seconds"},
		{"missing stopwords", Config{StopwordsFile: "/nonexistent/stopwords.txt"}, "stopwords file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Model: "custom", Port: 9000}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "custom", merged.Model)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, DefaultDatabaseURL, merged.DatabaseURL)
	assert.Equal(t, DefaultMaxTokens, merged.MaxTokens)
	assert.Equal(t, DefaultKeySentences, merged.KeySentences)
	assert.Equal(t, DefaultTopWords, merged.TopWords)
	assert.InDelta(t, DefaultTemperature, merged.Temperature, 1e-9)
	assert.Equal(t, ":9000", merged.Addr())

	// original is untouched
	assert.Zero(t, cfg.MaxTokens)
}

func TestLoadStopwords(t *testing.T) {
	path := writeFile(t, "stop.txt", "# custom list\nThe\n\n  is  \nof\n")

	words, err := LoadStopwords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "is", "of"}, words)

	_, err = LoadStopwords(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
