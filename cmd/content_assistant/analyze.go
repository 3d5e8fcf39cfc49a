package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-assistant/internal/assistant"
	"github.com/jonathan/content-assistant/internal/observability"
	"github.com/jonathan/content-assistant/internal/types"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		input   inputOptions
		asJSON  bool
		timeout int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the spider-graph analysis of URLs and text",
		Long: "Fetch each URL, combine the pages with the given text and print the spider-graph analysis: " +
			"key points, tone, writing style and word frequency. No API key is needed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			urls, text, err := input.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				cfg.FetchTimeoutSeconds = timeout
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			analyzer, err := assistant.NewAnalyzer(cfg, logger)
			if err != nil {
				return err
			}
			svc, err := assistant.New(assistant.Options{Analyzer: analyzer, Logger: logger})
			if err != nil {
				return err
			}

			resp, err := svc.Analyze(cmd.Context(), types.AnalyzeRequest{URLs: urls, Text: text})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			if cfg.Verbose {
				printer := observability.NewPrinter(cmd.ErrOrStderr())
				printer.PrintSources(resp.Sources)
				printer.PrintReport(resp.Report)
			}
			fmt.Fprintln(out, resp.Summary)
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().IntVar(&timeout, "timeout", 10, "Per-URL fetch timeout in seconds")
	return cmd
}
