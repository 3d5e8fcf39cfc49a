package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/content-assistant/internal/assistant"
	"github.com/jonathan/content-assistant/internal/export"
	"github.com/jonathan/content-assistant/internal/prompts"
	"github.com/jonathan/content-assistant/internal/types"
)

// TaskInfo describes a content task for clients.
type TaskInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Chunked bool   `json:"chunked"`
}

// TasksResponse represents the response for /api/tasks
type TasksResponse struct {
	Tasks         []TaskInfo      `json:"tasks"`
	EmphasisAreas []string        `json:"emphasis_areas"`
	ExportFormats []export.Format `json:"export_formats"`
}

// ListResultsResponse represents the response for /api/results
type ListResultsResponse struct {
	Results any `json:"results"`
	Count   int `json:"count"`
}

func taskInfos() []TaskInfo {
	tasks := prompts.AllTasks()
	infos := make([]TaskInfo, len(tasks))
	for i, t := range tasks {
		infos[i] = TaskInfo{
			Name:    string(t),
			Label:   t.Label(),
			Chunked: t.Mode() != prompts.ModeTemplate,
		}
	}
	return infos
}

// handleTasks lists the available content tasks
func (s *Server) handleTasks(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, TasksResponse{
		Tasks:         taskInfos(),
		EmphasisAreas: prompts.EmphasisAreas(),
		ExportFormats: export.Formats(),
	})
}

// handleAnalyze runs the spider-graph analysis only
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	resp, err := s.assistant.Analyze(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGenerate runs a content task and returns the result
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.assistant.Run(r.Context(), req, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateStream runs a content task and streams progress over SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	// reject bad requests before the stream opens so they get a real status
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", assistant.ErrInvalidRequest, err))
		return
	}
	if !s.assistant.HasLLM() {
		s.fail(w, r, assistant.ErrLLMUnavailable)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.assistant.Run(r.Context(), req, func(e assistant.Event) {
		if err := sse.WriteEvent("progress", e); err != nil {
			s.logger.Debug("client went away during stream", zap.Error(err))
		}
	})
	if err != nil {
		s.logger.Warn("streamed task failed", zap.String("task", req.Task), zap.Error(err))
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}
	sse.WriteComplete(result)
}

// handleListResults lists logged results, newest first
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, r, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	records, err := s.assistant.History(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ListResultsResponse{Results: records, Count: len(records)})
}

// handleGetResult returns one logged result
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.assistant.Record(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleExportResult downloads a logged result in the requested format
func (s *Server) handleExportResult(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatMarkdown)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "format", Message: err.Error()})
		return
	}

	rec, err := s.assistant.Record(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body, err := export.Render(rec, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(rec, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("failed to write export", zap.Error(err))
	}
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}
