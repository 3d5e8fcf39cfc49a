// Package export renders logged analysis records as downloadable documents.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jonathan/content-assistant/internal/analysis"
	"github.com/jonathan/content-assistant/internal/db"
	"github.com/jonathan/content-assistant/internal/prompts"
	"github.com/jonathan/content-assistant/internal/schemas"
	"github.com/microcosm-cc/bluemonday"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON, FormatHTML}
}

// ParseFormat accepts a format name or file extension, ignoring case and a leading dot.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	switch s {
	case "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of a format.
func ContentType(f Format) string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName returns a download name for a record.
func FileName(r *db.Record, f Format) string {
	id := r.ID.String()
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("analysis-%s-%s.%s", r.Task, id, f)
}

// Render renders a record in the given format.
func Render(r *db.Record, f Format) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("record is nil")
	}
	switch f {
	case FormatText:
		return renderText(r), nil
	case FormatMarkdown:
		return renderMarkdown(r), nil
	case FormatJSON:
		return renderJSON(r)
	case FormatHTML:
		return renderHTML(r)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

func taskLabel(task string) string {
	if t, err := prompts.ParseTask(task); err == nil {
		return t.Label()
	}
	return task
}

func reportOf(r *db.Record) *analysis.Report {
	if r.Analysis == nil {
		return &analysis.Report{}
	}
	return r.Analysis
}

func renderText(r *db.Record) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Task: %s\n", taskLabel(r.Task)))
	sb.WriteString(fmt.Sprintf("Date: %s\n", r.CreatedAt.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("URLs: %s\n", strings.Join(r.URLs, ", ")))
	sb.WriteString(fmt.Sprintf("Audience: %s\n", r.Audience))
	sb.WriteString(fmt.Sprintf("Topic: %s\n\n", r.Topic))
	sb.WriteString(reportOf(r).Format())
	sb.WriteString("\nResult:\n")
	sb.WriteString(r.Result)
	sb.WriteString("\n")
	return []byte(sb.String())
}

func renderMarkdown(r *db.Record) []byte {
	report := reportOf(r)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", taskLabel(r.Task)))
	sb.WriteString(fmt.Sprintf("- **Date:** %s\n", r.CreatedAt.UTC().Format(time.RFC3339)))
	if r.Audience != "" {
		sb.WriteString(fmt.Sprintf("- **Audience:** %s\n", r.Audience))
	}
	if r.Topic != "" {
		sb.WriteString(fmt.Sprintf("- **Topic:** %s\n", r.Topic))
	}
	for _, u := range r.URLs {
		sb.WriteString(fmt.Sprintf("- <%s>\n", u))
	}

	sb.WriteString("\n## Spider Graph Analysis\n\n")
	sb.WriteString("### Key Points\n\n")
	for _, s := range report.KeySentences {
		sb.WriteString(fmt.Sprintf("- %s\n", s))
	}
	sb.WriteString(fmt.Sprintf("\n**Tone:** %s\n\n", report.Tone))
	sb.WriteString("### Writing Style\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Average sentence length | %.2f words |\n", report.Style.AvgSentenceLength))
	sb.WriteString(fmt.Sprintf("| Average paragraph length | %.2f sentences |\n", report.Style.AvgParagraphLength))
	sb.WriteString(fmt.Sprintf("| Paragraphs | %d |\n", report.Style.ParagraphCount))
	sb.WriteString("\n### Word Frequency\n\n")
	for _, wc := range report.TopWords {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", wc.Word, wc.Count))
	}

	sb.WriteString("\n## Result\n\n")
	sb.WriteString(r.Result)
	sb.WriteString("\n")
	return []byte(sb.String())
}

type jsonDocument struct {
	ID        string           `json:"id"`
	Task      string           `json:"task"`
	TaskLabel string           `json:"task_label"`
	URLs      []string         `json:"urls"`
	Audience  string           `json:"audience"`
	Topic     string           `json:"topic"`
	Analysis  *analysis.Report `json:"analysis"`
	Result    string           `json:"result"`
	CreatedAt string           `json:"created_at"`
}

func renderJSON(r *db.Record) ([]byte, error) {
	report := *reportOf(r)
	if report.KeySentences == nil {
		report.KeySentences = []string{}
	}
	if report.TopWords == nil {
		report.TopWords = []analysis.WordCount{}
	}
	if report.Style.ParagraphCount == 0 {
		report.Style.ParagraphCount = 1
	}
	if report.Tone == "" {
		report.Tone = analysis.ToneNeutral
	}

	urls := r.URLs
	if urls == nil {
		urls = []string{}
	}

	doc := jsonDocument{
		ID:        r.ID.String(),
		Task:      r.Task,
		TaskLabel: taskLabel(r.Task),
		URLs:      urls,
		Audience:  r.Audience,
		Topic:     r.Topic,
		Analysis:  &report,
		Result:    r.Result,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := schemas.Validate(schemas.AnalysisResult, data); err != nil {
		return nil, fmt.Errorf("export failed schema validation: %w", err)
	}
	return data, nil
}

var htmlTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Label}}</title>
</head>
<body>
<h1>{{.Label}}</h1>
<p><strong>Date:</strong> {{.Date}}</p>
{{if .Audience}}<p><strong>Audience:</strong> {{.Audience}}</p>{{end}}
{{if .Topic}}<p><strong>Topic:</strong> {{.Topic}}</p>{{end}}
{{if .URLs}}<ul>{{range .URLs}}<li>{{.}}</li>{{end}}</ul>{{end}}
<h2>Spider Graph Analysis</h2>
<pre>{{.Summary}}</pre>
<h2>Result</h2>
<div class="result">{{.Result}}</div>
</body>
</html>
`))

var resultPolicy = bluemonday.UGCPolicy()

func renderHTML(r *db.Record) ([]byte, error) {
	data := struct {
		Label    string
		Date     string
		Audience string
		Topic    string
		URLs     []string
		Summary  string
		Result   template.HTML
	}{
		Label:    taskLabel(r.Task),
		Date:     r.CreatedAt.UTC().Format(time.RFC3339),
		Audience: r.Audience,
		Topic:    r.Topic,
		URLs:     r.URLs,
		Summary:  reportOf(r).Format(),
		Result:   SanitizeResult(r.Result),
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML export: %w", err)
	}
	return buf.Bytes(), nil
}

// SanitizeResult turns model output into safe HTML. Markup outside the
// user-content policy is stripped and blank lines become paragraph breaks.
func SanitizeResult(result string) template.HTML {
	var sb strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(result, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		clean := resultPolicy.Sanitize(para)
		sb.WriteString("<p>")
		sb.WriteString(strings.ReplaceAll(clean, "\n", "<br>\n"))
		sb.WriteString("</p>\n")
	}
	return template.HTML(sb.String())
}
