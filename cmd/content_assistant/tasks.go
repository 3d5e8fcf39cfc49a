package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-assistant/internal/prompts"
)

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the available content tasks",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, t := range prompts.AllTasks() {
				note := ""
				if t.Mode() != prompts.ModeTemplate {
					note = " (chunked)"
				}
				fmt.Fprintf(out, "%-14s %s%s\n", t, t.Label(), note)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Areas of emphasis:")
			for _, area := range prompts.EmphasisAreas() {
				fmt.Fprintf(out, "  %s\n", area)
			}
		},
	}
}
