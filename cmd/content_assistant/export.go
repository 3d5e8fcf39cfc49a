package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/content-assistant/internal/export"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		formatName string
		outFile    string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a logged result as txt, md, json or html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid result ID %q: %w", args[0], err)
			}
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rec, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("result %s not found", id)
			}

			body, err := export.Render(rec, format)
			if err != nil {
				return err
			}

			if outFile == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if outFile == "." {
				outFile = export.FileName(rec, format)
			}
			if err := os.WriteFile(outFile, body, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "md", "Export format: txt, md, json, html")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file ('.' for a generated name; default stdout)")
	return cmd
}
