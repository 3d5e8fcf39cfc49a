package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/content-assistant/internal/export"
	"github.com/jonathan/content-assistant/internal/prompts"
	"github.com/jonathan/content-assistant/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// formValues holds the submitted form so it can be shown again on error.
type formValues struct {
	Task      string
	URLs      string
	Text      string
	Audience  string
	Topic     string
	Timeframe string
	Emphasis  []string
}

func (f formValues) HasEmphasis(area string) bool {
	return slices.Contains(f.Emphasis, area)
}

type indexPage struct {
	Tasks         []TaskInfo
	EmphasisAreas []string
	Form          formValues
	LLM           bool
	Error         string
}

type resultPage struct {
	ID      string
	Label   string
	Summary string
	Output  template.HTML
	Sources []types.SourceStatus
	Formats []export.Format
}

// handleIndex renders the input form
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderIndex(w, http.StatusOK, formValues{Task: string(prompts.TaskToneStyle)}, "")
}

// handleFormGenerate handles the form post: analyze only or run the task
func (s *Server) handleFormGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, http.StatusBadRequest, formValues{}, "Could not read the form: "+err.Error())
		return
	}

	form := formValues{
		Task:      r.PostFormValue("task"),
		URLs:      r.PostFormValue("urls"),
		Text:      r.PostFormValue("text"),
		Audience:  r.PostFormValue("audience"),
		Topic:     r.PostFormValue("topic"),
		Timeframe: r.PostFormValue("timeframe"),
		Emphasis:  r.PostForm["emphasis"],
	}
	urls := strings.Split(form.URLs, "\n")

	if r.PostFormValue("action") == "analyze" {
		resp, err := s.assistant.Analyze(r.Context(), types.AnalyzeRequest{URLs: urls, Text: form.Text})
		if err != nil {
			s.renderIndex(w, HTTPStatus(err), form, err.Error())
			return
		}
		s.renderResult(w, resultPage{
			Label:   "Spider Graph Analysis",
			Summary: resp.Summary,
			Sources: resp.Sources,
		})
		return
	}

	result, err := s.assistant.Run(r.Context(), types.GenerateRequest{
		Task:      form.Task,
		URLs:      urls,
		Text:      form.Text,
		Audience:  form.Audience,
		Topic:     form.Topic,
		Timeframe: form.Timeframe,
		Emphasis:  form.Emphasis,
	}, nil)
	if err != nil {
		s.renderIndex(w, HTTPStatus(err), form, err.Error())
		return
	}

	page := resultPage{
		Label:   result.Task.Label(),
		Summary: result.Summary,
		Output:  export.SanitizeResult(result.Output),
		Sources: result.Sources,
	}
	if result.Saved {
		page.ID = result.ID.String()
		page.Formats = export.Formats()
	}
	s.renderResult(w, page)
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, form formValues, errMsg string) {
	s.render(w, status, "index", indexPage{
		Tasks:         taskInfos(),
		EmphasisAreas: prompts.EmphasisAreas(),
		Form:          form,
		LLM:           s.assistant.HasLLM(),
		Error:         errMsg,
	})
}

func (s *Server) renderResult(w http.ResponseWriter, page resultPage) {
	s.render(w, http.StatusOK, "result", page)
}

// render executes into a buffer first so a template error never sends a
// half-written page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

