package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-assistant/internal/assistant"
	"github.com/jonathan/content-assistant/internal/observability"
	"github.com/jonathan/content-assistant/internal/types"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		input   inputOptions
		req     types.GenerateRequest
		outFile string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run a content task through the LLM and log the result",
		Long: "Analyze the input, then run a content task (see 'tasks') through the LLM. " +
			"The result is printed and appended to the result log.",
		Example: `  content_assistant generate --task tweets --url https://go.dev/blog --audience developers --topic Go
  content_assistant generate --task summarize --text-file article.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			urls, text, err := input.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}
			req.URLs = urls
			req.Text = text

			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			svc, err := assistant.Setup(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			var observe assistant.Observer
			printer := observability.NewPrinter(cmd.ErrOrStderr())
			if cfg.Verbose {
				observe = printer.PrintEvent
			}

			result, err := svc.Run(cmd.Context(), req, observe)
			if err != nil {
				return err
			}
			if cfg.Verbose {
				printer.PrintSources(result.Sources)
				printer.PrintReport(result.Report)
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(result.Output+"\n"), 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if outFile == "" {
				fmt.Fprintln(out, result.Output)
			}

			if result.Saved {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved result %s\n", result.ID)
			}
			return nil
		},
	}

	input.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&req.Task, "task", "", "Task name or label (required)")
	flags.StringVar(&req.Audience, "audience", "", "Target audience")
	flags.StringVar(&req.Topic, "topic", "", "Topic")
	flags.StringVar(&req.Timeframe, "timeframe", "", "Timeframe (optional)")
	flags.StringSliceVar(&req.Emphasis, "emphasis", nil, "Areas of emphasis (comma-separated)")
	flags.IntVar(&req.MaxTokens, "max-tokens", 0, "Maximum output tokens")
	flags.Float64Var(&req.Temperature, "temperature", 0, "Sampling temperature")
	flags.StringVarP(&outFile, "out", "o", "", "Write the result to a file")
	flags.BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}
