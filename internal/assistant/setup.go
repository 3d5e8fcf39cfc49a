package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/content-assistant/internal/analysis"
	"github.com/jonathan/content-assistant/internal/config"
	"github.com/jonathan/content-assistant/internal/db"
	"github.com/jonathan/content-assistant/internal/fetch"
	"github.com/jonathan/content-assistant/internal/llm"
	"github.com/jonathan/content-assistant/internal/metrics"
)

// NewAnalyzer builds the spider-graph analyzer described by cfg.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) (*analysis.Analyzer, error) {
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UseBrowser = cfg.UseBrowser
	if t := cfg.FetchTimeout(); t > 0 {
		fetchOpts.Timeout = t
	}

	opts := analysis.Options{
		Fetcher:      fetch.NewHTTPFetcher(fetchOpts, logger),
		FetchTimeout: fetchOpts.Timeout,
		KeySentences: cfg.KeySentences,
		TopWords:     cfg.TopWords,
		Logger:       logger,
	}
	if cfg.StopwordsFile != "" {
		words, err := config.LoadStopwords(cfg.StopwordsFile)
		if err != nil {
			return nil, err
		}
		lexicon := analysis.DefaultLexicon().WithStopwords(words)
		opts.Lexicon = &lexicon
	}
	return analysis.NewAnalyzer(opts)
}

// Setup wires a Service from configuration. Without an API key the service
// still analyzes but cannot run tasks. A store that fails to open is logged
// and skipped so the service keeps working without history.
func Setup(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	analyzer, err := NewAnalyzer(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Analyzer:    analyzer,
		Logger:      logger,
		Metrics:     m,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	if cfg.APIKey != "" {
		llmCfg := llm.DefaultConfig()
		if cfg.MaxTokens > 0 {
			llmCfg.MaxTokens = cfg.MaxTokens
		}
		if cfg.Temperature > 0 {
			llmCfg.Temperature = cfg.Temperature
		}
		client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		opts.LLM = client
	} else {
		logger.Warn("no API key configured, content tasks are disabled")
	}

	if cfg.DatabaseURL != "" {
		store, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("failed to open result store, continuing without history",
				zap.Error(err))
		} else {
			opts.Store = store
		}
	}

	return New(opts)
}
