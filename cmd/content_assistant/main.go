// Package main provides the entry point for the content assistant CLI and HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/content-assistant/internal/config"
	"github.com/jonathan/content-assistant/internal/logging"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	getenv func(string) string

	configPath string
	apiKey     string
	dbURL      string
	model      string
	logLevel   string
	verbose    bool
	useBrowser bool
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	return (&rootOptions{getenv: getenv}).command()
}

func (opts *rootOptions) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content_assistant",
		Short: "Content analysis assistant",
		Long: "Content analysis assistant fetches web pages and text, builds a spider-graph analysis " +
			"(key points, tone, writing style, word frequency) and runs content tasks such as tweets, " +
			"summaries and blog outlines through an LLM.",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML config file")
	flags.StringVar(&opts.apiKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	flags.StringVar(&opts.dbURL, "db-url", "", "postgres:// URL or SQLite path (overrides DATABASE_URL env var)")
	flags.StringVar(&opts.model, "model", "", "Model name or tier: lite, standard, advanced")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed progress")
	flags.BoolVar(&opts.useBrowser, "use-browser", false, "Render script-heavy pages in headless Chrome")

	cmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newGenerateCmd(opts),
		newHistoryCmd(opts),
		newExportCmd(opts),
		newTasksCmd(),
	)
	return cmd
}

// loadConfig resolves configuration: defaults, then the config file, then
// the environment, then flags the user set explicitly.
func (opts *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Defaults()
	if opts.configPath != "" {
		fileCfg, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := cfg.ApplyEnv(opts.getenv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = opts.apiKey
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = opts.dbURL
	}
	if flags.Changed("model") {
		cfg.Model = opts.model
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = opts.useBrowser
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Development = cfg.LogDevelopment
	return logging.New(logCfg)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Getenv).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
