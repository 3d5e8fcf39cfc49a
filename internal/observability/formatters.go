// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/content-assistant/internal/analysis"
	"github.com/jonathan/content-assistant/internal/assistant"
	"github.com/jonathan/content-assistant/internal/db"
	"github.com/jonathan/content-assistant/internal/prompts"
	"github.com/jonathan/content-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the inner box width, counting runes.
func pad(line string) string {
	inner := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > inner {
		runes := []rune(line)
		return string(runes[:inner-3]) + "..."
	}
	return line + strings.Repeat(" ", inner-n)
}

// PrintSources outputs the fetch outcome of each URL.
func (p *Printer) PrintSources(sources []types.SourceStatus) {
	if len(sources) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for _, s := range sources {
		if s.OK {
			sb.WriteString(fmt.Sprintf("✓ %s\n", s.URL))
			continue
		}
		failed++
		sb.WriteString(fmt.Sprintf("✗ %s\n", s.URL))
		if s.Error != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", s.Error))
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d fetched, %d failed", len(sources)-failed, failed))

	p.printBox("SOURCES", sb.String())
}

// PrintReport outputs the spider-graph report in compact form.
func (p *Printer) PrintReport(report *analysis.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tone:       %s\n", report.Tone))
	sb.WriteString(fmt.Sprintf("Sentences:  %.2f words avg\n", report.Style.AvgSentenceLength))
	sb.WriteString(fmt.Sprintf("Paragraphs: %d (%.2f sentences avg)\n",
		report.Style.ParagraphCount, report.Style.AvgParagraphLength))

	if len(report.KeySentences) > 0 {
		sb.WriteString("\nKey Points:\n")
		for _, s := range report.KeySentences {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}

	if len(report.TopWords) > 0 {
		sb.WriteString("\nTop Words:\n")
		count := min(len(report.TopWords), maxItemsToShow)
		for i := 0; i < count; i++ {
			wc := report.TopWords[i]
			sb.WriteString(fmt.Sprintf("  %-20s %d\n", wc.Word, wc.Count))
		}
		if len(report.TopWords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.TopWords)-maxItemsToShow))
		}
	}

	p.printBox("SPIDER GRAPH ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvent outputs one progress line.
//
//nolint:errcheck
func (p *Printer) PrintEvent(e assistant.Event) {
	fmt.Fprintf(p.out, "[%s] %s\n", strings.ToUpper(string(e.Step)), e.Message)
}

// PrintRecords outputs a table of logged results.
//
//nolint:errcheck
func (p *Printer) PrintRecords(records []db.Record) {
	if len(records) == 0 {
		fmt.Fprintln(p.out, "No results logged yet.")
		return
	}
	for _, r := range records {
		label := r.Task
		if t, err := prompts.ParseTask(r.Task); err == nil {
			label = t.Label()
		}
		fmt.Fprintf(p.out, "%s  %s  %-36s  %d URL(s)\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), label, len(r.URLs))
	}
}
