package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-assistant/internal/analysis"
)

// inputOptions are the flags naming what to analyze.
type inputOptions struct {
	urls     []string
	urlsFile string
	text     string
	textFile string
}

func (in *inputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&in.urls, "url", "u", nil, "URL to fetch (repeatable)")
	cmd.Flags().StringVar(&in.urlsFile, "urls-file", "", "File with one URL per line")
	cmd.Flags().StringVarP(&in.text, "text", "t", "", "Text to analyze")
	cmd.Flags().StringVar(&in.textFile, "text-file", "", "File with text to analyze ('-' for stdin)")
	cmd.MarkFlagsMutuallyExclusive("text", "text-file")
}

// resolve returns the URL list and text, reading files as needed.
func (in *inputOptions) resolve(stdin io.Reader) ([]string, string, error) {
	urls := append([]string(nil), in.urls...)
	if in.urlsFile != "" {
		data, err := os.ReadFile(in.urlsFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read URLs file: %w", err)
		}
		urls = append(urls, analysis.ParseURLList(string(data))...)
	}

	text := in.text
	switch in.textFile {
	case "":
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	default:
		data, err := os.ReadFile(in.textFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(data)
	}

	if len(urls) == 0 && strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("provide at least one --url/--urls-file or --text/--text-file")
	}
	return urls, text, nil
}
