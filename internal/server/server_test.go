package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/content-assistant/internal/analysis"
	"github.com/jonathan/content-assistant/internal/assistant"
	"github.com/jonathan/content-assistant/internal/db"
	"github.com/jonathan/content-assistant/internal/fetch"
	"github.com/jonathan/content-assistant/internal/llm"
	"github.com/jonathan/content-assistant/internal/server/ratelimit"
)

type stubFetcher map[string]string

func (f stubFetcher) Fetch(_ context.Context, rawURL string, _ time.Duration) fetch.Result {
	text, ok := f[rawURL]
	if !ok {
		return fetch.Result{URL: rawURL, Err: errors.New("no such host")}
	}
	return fetch.Result{URL: rawURL, Text: text, OK: true}
}

type stubLLM struct {
	output string
}

func (s stubLLM) Generate(_ context.Context, _ llm.GenerateRequest) (string, error) {
	return s.output, nil
}

func (stubLLM) Close() error { return nil }

type testOptions struct {
	noLLM   bool
	noStore bool
	limiter *ratelimit.Limiter
}

func newTestServer(t *testing.T, opts testOptions) *Server {
	t.Helper()

	analyzer, err := analysis.NewAnalyzer(analysis.Options{
		Fetcher: stubFetcher{"https://go.example": "Go is a great language. Go is fast."},
	})
	require.NoError(t, err)

	svcOpts := assistant.Options{Analyzer: analyzer}
	if !opts.noLLM {
		svcOpts.LLM = stubLLM{output: "First tweet.\n\nSecond <script>alert(1)</script>tweet."}
	}
	if !opts.noStore {
		store, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "server.db"))
		require.NoError(t, err)
		svcOpts.Store = store
	}
	svc, err := assistant.New(svcOpts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	return NewWithDeps(Deps{Assistant: svc, RateLimiter: opts.limiter})
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, testOptions{noLLM: true})

	rec := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["llm"])
	assert.Equal(t, true, body["store"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleTasks(t *testing.T) {
	s := newTestServer(t, testOptions{})

	rec := do(t, s, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[TasksResponse](t, rec)
	require.Len(t, body.Tasks, 9)
	assert.Equal(t, "tone-style", body.Tasks[0].Name)
	assert.False(t, body.Tasks[0].Chunked)
	assert.Contains(t, body.EmphasisAreas, "SEO Optimization")
	assert.Len(t, body.ExportFormats, 4)
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t, testOptions{noLLM: true})

	rec := do(t, s, http.MethodPost, "/api/analyze", map[string]any{
		"urls": []string{"https://go.example", "https://missing.example"},
		"text": "Readers enjoy great writing.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Report  analysis.Report `json:"report"`
		Summary string          `json:"summary"`
		Sources []struct {
			URL   string `json:"url"`
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, analysis.TonePositive, body.Report.Tone)
	assert.True(t, strings.HasPrefix(body.Summary, "Spider Graph Analysis Summary:"))
	require.Len(t, body.Sources, 2)
	assert.True(t, body.Sources[0].OK)
	assert.False(t, body.Sources[1].OK)
	assert.NotEmpty(t, body.Sources[1].Error)
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	s := newTestServer(t, testOptions{})

	rec := do(t, s, http.MethodPost, "/api/analyze", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid JSON")
}

func TestHandleGenerate(t *testing.T) {
	s := newTestServer(t, testOptions{})

	rec := do(t, s, http.MethodPost, "/api/generate", map[string]any{
		"task":     "tweets",
		"urls":     []string{"https://go.example"},
		"audience": "gophers",
		"topic":    "Go",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[assistant.Result](t, rec)
	assert.Equal(t, "tweets", string(result.Task))
	assert.True(t, result.Saved)
	assert.Contains(t, result.Output, "First tweet.")

	rec = do(t, s, http.MethodGet, "/api/results/"+result.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	record := decode[db.Record](t, rec)
	assert.Equal(t, result.ID, record.ID)
	assert.Equal(t, "gophers", record.Audience)

	rec = do(t, s, http.MethodGet, "/api/results?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Results []db.Record `json:"results"`
		Count   int         `json:"count"`
	}](t, rec)
	assert.Equal(t, 1, list.Count)
}

func TestHandleGenerate_Errors(t *testing.T) {
	s := newTestServer(t, testOptions{})
	rec := do(t, s, http.MethodPost, "/api/generate", map[string]any{"task": "poetry", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/generate", map[string]any{"task": "quotes", "urls": []string{"https://missing.example"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	noLLM := newTestServer(t, testOptions{noLLM: true})
	rec = do(t, noLLM, http.MethodPost, "/api/generate", map[string]any{"task": "tweets", "text": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleGenerateStream(t *testing.T) {
	s := newTestServer(t, testOptions{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate/stream", "application/json",
		strings.NewReader(`{"task":"listicle","text":"Go is great."}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	require.NotEmpty(t, events)
	assert.Equal(t, "progress", events[0])
	assert.Equal(t, "complete", events[len(events)-1])
}

func TestHandleGenerateStream_RejectsBeforeStreaming(t *testing.T) {
	s := newTestServer(t, testOptions{noLLM: true})

	rec := do(t, s, http.MethodPost, "/api/generate/stream", map[string]any{"task": "tweets"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/generate/stream", map[string]any{"task": "tweets", "text": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandleResults_Errors(t *testing.T) {
	s := newTestServer(t, testOptions{})

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/results/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/results/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/results?limit=-1", nil).Code)

	noStore := newTestServer(t, testOptions{noStore: true})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, noStore, http.MethodGet, "/api/results", nil).Code)
}

func TestHandleExportResult(t *testing.T) {
	s := newTestServer(t, testOptions{})
	result := decode[assistant.Result](t, do(t, s, http.MethodPost, "/api/generate", map[string]any{
		"task": "tweets",
		"text": "Go is great.",
	}))

	rec := do(t, s, http.MethodGet, "/api/results/"+result.ID.String()+"/export?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, json.Valid(rec.Body.Bytes()))

	rec = do(t, s, http.MethodGet, "/api/results/"+result.ID.String()+"/export?format=html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")

	rec = do(t, s, http.MethodGet, "/api/results/"+result.ID.String()+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")

	rec = do(t, s, http.MethodGet, "/api/results/"+result.ID.String()+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexAndFormFlow(t *testing.T) {
	s := newTestServer(t, testOptions{})

	rec := do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Write Tweets from Content")
	assert.Contains(t, rec.Body.String(), `name="emphasis"`)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nope", nil).Code)

	form := url.Values{
		"task":     {"tweets"},
		"urls":     {"https://go.example\n"},
		"audience": {"gophers"},
		"emphasis": {"SEO Optimization"},
		"action":   {"generate"},
	}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "Spider Graph Analysis Summary:")
	assert.Contains(t, body, "<p>First tweet.</p>")
	assert.NotContains(t, body, "<script>alert")
	assert.Contains(t, body, "export?format=md")
}

func TestFormAnalyzeOnlyAndErrors(t *testing.T) {
	s := newTestServer(t, testOptions{noLLM: true})

	post := func(values url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec := post(url.Values{"text": {"This is a wonderful day."}, "action": {"analyze"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tone: Positive")

	rec = post(url.Values{"task": {"tweets"}, "text": {"hello"}, "action": {"generate"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)
	assert.Contains(t, rec.Body.String(), "hello")

	rec = post(url.Values{"action": {"analyze"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, testOptions{})

	rec := do(t, s, http.MethodOptions, "/api/generate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour,
	})
	t.Cleanup(limiter.Stop)
	s := newTestServer(t, testOptions{limiter: limiter})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/tasks", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/tasks", nil).Code)

	rec := do(t, s, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testOptions{})
	do(t, s, http.MethodGet, "/api/tasks", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `content_assistant_http_requests_total{method="GET",path="GET /api/tasks",status="200"} 1`)
}
