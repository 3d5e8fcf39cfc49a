// Package types provides the request and response types shared by the CLI and
// HTTP server.
package types

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/content-assistant/internal/analysis"
	"github.com/jonathan/content-assistant/internal/fetch"
	"github.com/jonathan/content-assistant/internal/prompts"
)

// MaxURLs bounds how many URLs one request may fetch.
const MaxURLs = 20

// ErrNoInput is returned when a request has neither URLs nor text.
var ErrNoInput = errors.New("provide at least one URL or some text")

var validate = validator.New()

// AnalyzeRequest asks for a spider-graph analysis of URLs and supplied text.
type AnalyzeRequest struct {
	URLs []string `json:"urls" validate:"max=20,dive,required"`
	Text string   `json:"text"`
}

// Normalize trims inputs and drops blank URLs.
func (r *AnalyzeRequest) Normalize() {
	r.URLs = cleanURLs(r.URLs)
	r.Text = strings.TrimSpace(r.Text)
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if len(r.URLs) == 0 && r.Text == "" {
		return ErrNoInput
	}
	return nil
}

// AnalyzeResponse is the result of an analysis request.
type AnalyzeResponse struct {
	Report  *analysis.Report `json:"report"`
	Summary string           `json:"summary"`
	Sources []SourceStatus   `json:"sources"`
}

// SourceStatus reports the fetch outcome of one URL.
type SourceStatus struct {
	URL   string `json:"url"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// GenerateRequest asks for a content task to be run through the LLM.
type GenerateRequest struct {
	Task        string   `json:"task" validate:"required"`
	URLs        []string `json:"urls" validate:"max=20,dive,required"`
	Text        string   `json:"text"`
	Audience    string   `json:"audience" validate:"max=200"`
	Topic       string   `json:"topic" validate:"max=200"`
	Timeframe   string   `json:"timeframe" validate:"max=100"`
	Emphasis    []string `json:"emphasis" validate:"max=5"`
	Model       string   `json:"model,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" validate:"omitempty,min=1,max=100000"`
	Temperature float64  `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
}

// Normalize trims inputs and drops blank URLs.
func (r *GenerateRequest) Normalize() {
	r.Task = strings.TrimSpace(r.Task)
	r.URLs = cleanURLs(r.URLs)
	r.Text = strings.TrimSpace(r.Text)
	r.Audience = strings.TrimSpace(r.Audience)
	r.Topic = strings.TrimSpace(r.Topic)
	r.Timeframe = strings.TrimSpace(r.Timeframe)
}

// Validate validates the GenerateRequest using the validator, then checks the
// task name and that some input is present.
func (r *GenerateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if _, err := prompts.ParseTask(r.Task); err != nil {
		return err
	}
	if len(r.URLs) == 0 && r.Text == "" {
		return ErrNoInput
	}
	return nil
}

// ParsedTask returns the request's task. Call after Validate.
func (r *GenerateRequest) ParsedTask() prompts.Task {
	task, _ := prompts.ParseTask(r.Task)
	return task
}

// NewSourceStatuses converts fetch results into response form.
func NewSourceStatuses(results []fetch.Result) []SourceStatus {
	out := make([]SourceStatus, len(results))
	for i, r := range results {
		out[i] = SourceStatus{URL: r.URL, OK: r.OK}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

func cleanURLs(urls []string) []string {
	var out []string
	for _, u := range urls {
		for _, line := range strings.Split(u, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}
