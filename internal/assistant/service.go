// Package assistant runs content tasks: it fetches and analyzes the input,
// prompts the LLM and logs the result.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/content-assistant/internal/analysis"
	"github.com/jonathan/content-assistant/internal/chunking"
	"github.com/jonathan/content-assistant/internal/db"
	"github.com/jonathan/content-assistant/internal/fetch"
	"github.com/jonathan/content-assistant/internal/llm"
	"github.com/jonathan/content-assistant/internal/metrics"
	"github.com/jonathan/content-assistant/internal/prompts"
	"github.com/jonathan/content-assistant/internal/types"
)

// DefaultChunkConcurrency bounds parallel LLM calls for chunked tasks.
const DefaultChunkConcurrency = 3

var (
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrLLMUnavailable is returned by Run when no LLM client is configured.
	ErrLLMUnavailable = errors.New("LLM is not configured: set GEMINI_API_KEY")
	// ErrStoreUnavailable is returned by history lookups without a store.
	ErrStoreUnavailable = errors.New("result store is not configured")
	// ErrNotFound is returned when a logged record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNoContent is returned when every source failed and no text was given.
	ErrNoContent = errors.New("no content to process: every URL failed and no text was supplied")
)

// Options configures a Service. Only Analyzer is required.
type Options struct {
	Analyzer *analysis.Analyzer
	LLM      llm.Client
	Store    db.Store
	Splitter *chunking.Splitter
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	// Per-request defaults, used when the request leaves them unset.
	Model       string
	MaxTokens   int
	Temperature float64

	ChunkConcurrency int
}

// Service runs content tasks. It is safe for concurrent use.
type Service struct {
	analyzer    *analysis.Analyzer
	llm         llm.Client
	store       db.Store
	splitter    *chunking.Splitter
	logger      *zap.Logger
	metrics     *metrics.Metrics
	model       string
	maxTokens   int
	temperature float64
	concurrency int
}

// Result is the outcome of one task run.
type Result struct {
	ID            uuid.UUID            `json:"id"`
	Task          prompts.Task         `json:"task"`
	Report        *analysis.Report     `json:"report"`
	Summary       string               `json:"summary"`
	Prompt        string               `json:"prompt"`
	Output        string               `json:"output"`
	Sources       []types.SourceStatus `json:"sources"`
	FetchFailures int                  `json:"fetch_failures"`
	Saved         bool                 `json:"saved"`
	CreatedAt     time.Time            `json:"created_at"`
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	if opts.Analyzer == nil {
		return nil, errors.New("assistant: analyzer is required")
	}
	s := &Service{
		analyzer:    opts.Analyzer,
		llm:         opts.LLM,
		store:       opts.Store,
		splitter:    opts.Splitter,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		concurrency: opts.ChunkConcurrency,
	}
	if s.splitter == nil {
		s.splitter = chunking.Default()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultChunkConcurrency
	}
	return s, nil
}

// HasLLM reports whether content tasks can run.
func (s *Service) HasLLM() bool {
	return s.llm != nil
}

// HasStore reports whether results are logged.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// Close releases the LLM client and the store.
func (s *Service) Close() error {
	var errs []error
	if s.llm != nil {
		errs = append(errs, s.llm.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

// Analyze runs only the spider-graph analysis over urls and text.
func (s *Service) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.AnalyzeResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	doc := s.analyzer.Collect(ctx, req.URLs, req.Text)
	s.observeSources(doc.Sources)

	report := s.analyzer.AnalyzeText(doc.Text)
	s.metrics.ObserveAnalysis()

	return &types.AnalyzeResponse{
		Report:  report,
		Summary: report.Format(),
		Sources: types.NewSourceStatuses(doc.Sources),
	}, nil
}

// Run executes a content task: fetch and analyze the input, prompt the LLM,
// then append the result to the log. A logging failure does not fail the run.
func (s *Service) Run(ctx context.Context, req types.GenerateRequest, observe Observer) (*Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if s.llm == nil {
		return nil, ErrLLMUnavailable
	}
	task := req.ParsedTask()

	observe.emit(StepFetch, fmt.Sprintf("Fetching %d URL(s)", len(req.URLs)), nil)
	doc := s.analyzer.Collect(ctx, req.URLs, req.Text)
	s.observeSources(doc.Sources)
	sources := types.NewSourceStatuses(doc.Sources)
	failed := doc.FailedSources()
	observe.emit(StepFetch,
		fmt.Sprintf("Fetched %d of %d URL(s)", len(doc.Sources)-failed, len(doc.Sources)),
		sources)

	report := s.analyzer.AnalyzeText(doc.Text)
	s.metrics.ObserveAnalysis()
	observe.emit(StepAnalyze, "Built spider-graph analysis", report)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	prompt, output, err := s.generate(ctx, task, &req, doc.Text, report, observe)
	s.metrics.ObserveGeneration(string(task), err == nil, time.Since(start))
	if err != nil {
		s.logger.Error("task failed",
			zap.String("task", string(task)),
			zap.Error(err))
		return nil, fmt.Errorf("%s failed: %w", task.Label(), err)
	}
	observe.emit(StepGenerate, fmt.Sprintf("Generated %d characters", len(output)), nil)

	rec := &db.Record{
		ID:        uuid.New(),
		Task:      string(task),
		URLs:      req.URLs,
		Audience:  req.Audience,
		Topic:     req.Topic,
		Analysis:  report,
		Result:    output,
		CreatedAt: time.Now().UTC(),
	}
	result := &Result{
		ID:            rec.ID,
		Task:          task,
		Report:        report,
		Summary:       report.Format(),
		Prompt:        prompt,
		Output:        output,
		Sources:       sources,
		FetchFailures: failed,
		CreatedAt:     rec.CreatedAt,
	}

	result.Saved = s.save(ctx, rec)
	if result.Saved {
		observe.emit(StepSave, "Saved result "+rec.ID.String(), nil)
	}

	observe.emit(StepDone, task.Label()+" complete", nil)
	return result, nil
}

// History returns the newest logged records.
func (s *Service) History(ctx context.Context, limit int) ([]db.Record, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store.List(ctx, limit)
}

// Record returns one logged record.
func (s *Service) Record(ctx context.Context, id uuid.UUID) (*db.Record, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (s *Service) generate(ctx context.Context, task prompts.Task, req *types.GenerateRequest, combined string, report *analysis.Report, observe Observer) (prompt, output string, err error) {
	if task.Mode() == prompts.ModeTemplate {
		prompt, err = prompts.BuildPrompt(prompts.Request{
			Task:      task,
			Analysis:  report.Format(),
			URLs:      req.URLs,
			Text:      req.Text,
			Audience:  req.Audience,
			Topic:     req.Topic,
			Timeframe: req.Timeframe,
			Emphasis:  req.Emphasis,
		})
		if err != nil {
			return "", "", err
		}
		observe.emit(StepPrompt, "Built prompt for "+task.Label(), nil)
		output, err = s.complete(ctx, req, prompt)
		return prompt, output, err
	}

	chunks := s.splitter.Split(strings.TrimSpace(combined))
	if len(chunks) == 0 {
		return "", "", ErrNoContent
	}

	chunkPrompts := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkPrompts[i], err = prompts.ChunkPrompt(task, chunk, req.Audience, req.Topic)
		if err != nil {
			return "", "", err
		}
	}
	observe.emit(StepPrompt, fmt.Sprintf("Split content into %d chunk(s)", len(chunks)), nil)

	outputs, err := s.completeAll(ctx, req, chunkPrompts)
	if err != nil {
		return "", "", err
	}

	if task.Mode() == prompts.ModePerChunk || len(outputs) == 1 {
		return chunkPrompts[0], strings.Join(outputs, "\n\n"), nil
	}

	observe.emit(StepGenerate, fmt.Sprintf("Combining %d partial summaries", len(outputs)), nil)
	combine, err := prompts.CombinePrompt(outputs)
	if err != nil {
		return "", "", err
	}
	output, err = s.complete(ctx, req, combine)
	return chunkPrompts[0], output, err
}

// completeAll runs the prompts concurrently and returns outputs in prompt order.
func (s *Service) completeAll(ctx context.Context, req *types.GenerateRequest, chunkPrompts []string) ([]string, error) {
	outputs := make([]string, len(chunkPrompts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range chunkPrompts {
		g.Go(func() error {
			out, err := s.complete(gctx, req, p)
			if err != nil {
				return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunkPrompts), err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (s *Service) complete(ctx context.Context, req *types.GenerateRequest, prompt string) (string, error) {
	genReq := llm.GenerateRequest{
		Prompt:      prompt,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if genReq.Model == "" {
		genReq.Model = s.model
	}
	if genReq.MaxTokens <= 0 {
		genReq.MaxTokens = s.maxTokens
	}
	if genReq.Temperature <= 0 {
		genReq.Temperature = s.temperature
	}
	return s.llm.Generate(ctx, genReq)
}

func (s *Service) save(ctx context.Context, rec *db.Record) bool {
	if s.store == nil {
		return false
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.metrics.ObserveSave(false)
		s.logger.Warn("failed to save result",
			zap.String("id", rec.ID.String()),
			zap.Error(err))
		return false
	}
	s.metrics.ObserveSave(true)
	return true
}

func (s *Service) observeSources(sources []fetch.Result) {
	for _, src := range sources {
		s.metrics.ObserveFetch(src.OK)
	}
}
