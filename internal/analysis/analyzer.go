package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/content-assistant/internal/fetch"
	"go.uber.org/zap"
)

// Options configures an Analyzer. Zero values select defaults.
type Options struct {
	Fetcher      fetch.Fetcher
	FetchTimeout time.Duration
	Lexicon      *Lexicon
	KeySentences int
	TopWords     int
	Logger       *zap.Logger
}

// Analyzer runs the spider-graph analysis over fetched pages and supplied text.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	tokenizer    *Tokenizer
	lexicon      Lexicon
	fetcher      fetch.Fetcher
	fetchTimeout time.Duration
	keySentences int
	topWords     int
	logger       *zap.Logger
}

// Document is the combined text of one analysis and the fetch outcome of each URL.
type Document struct {
	Text    string
	Sources []fetch.Result
}

// FailedSources returns how many URLs could not be fetched.
func (d *Document) FailedSources() int {
	n := 0
	for _, s := range d.Sources {
		if !s.OK {
			n++
		}
	}
	return n
}

// NewAnalyzer creates an Analyzer from options.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lexicon := DefaultLexicon()
	if opts.Lexicon != nil {
		lexicon = *opts.Lexicon
	}

	tokenizer, err := NewTokenizer(lexicon.Stopwords)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewHTTPFetcher(nil, logger)
	}

	a := &Analyzer{
		tokenizer:    tokenizer,
		lexicon:      lexicon,
		fetcher:      fetcher,
		fetchTimeout: opts.FetchTimeout,
		keySentences: opts.KeySentences,
		topWords:     opts.TopWords,
		logger:       logger,
	}
	if a.fetchTimeout <= 0 {
		a.fetchTimeout = fetch.DefaultTimeout
	}
	if a.keySentences <= 0 {
		a.keySentences = DefaultKeySentences
	}
	if a.topWords <= 0 {
		a.topWords = DefaultTopWords
	}
	return a, nil
}

// Tokenizer returns the analyzer's tokenizer.
func (a *Analyzer) Tokenizer() *Tokenizer {
	return a.tokenizer
}

// Collect fetches every URL and appends its text to the supplied text, each
// separated by a space. A URL that fails contributes empty text.
func (a *Analyzer) Collect(ctx context.Context, urls []string, text string) *Document {
	targets := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			targets = append(targets, strings.TrimSpace(u))
		}
	}

	results := fetch.FetchAll(ctx, a.fetcher, targets, a.fetchTimeout)

	var sb strings.Builder
	sb.WriteString(text)
	for _, r := range results {
		sb.WriteString(" ")
		sb.WriteString(r.Text)
	}

	doc := &Document{Text: sb.String(), Sources: results}
	if failed := doc.FailedSources(); failed > 0 {
		a.logger.Info("analysis continuing without failed sources",
			zap.Int("failed", failed),
			zap.Int("total", len(results)))
	}
	return doc
}

// Analyze fetches urls, combines them with text and analyzes the result.
func (a *Analyzer) Analyze(ctx context.Context, urls []string, text string) *Report {
	return a.AnalyzeText(a.Collect(ctx, urls, text).Text)
}

// AnalyzeText analyzes a document that is already in memory.
func (a *Analyzer) AnalyzeText(text string) *Report {
	sentences := a.tokenizer.Sentences(text)
	index := BuildFrequencyIndex(a.tokenizer.Normalize(text))

	ranked := RankKeySentences(a.tokenizer, sentences, index, a.keySentences)
	keySentences := make([]string, 0, len(ranked))
	for _, s := range ranked {
		keySentences = append(keySentences, s.Text)
	}

	return &Report{
		KeySentences: keySentences,
		Tone:         ClassifyTone(a.tokenizer, text, a.lexicon),
		Style:        ProfileStyle(a.tokenizer, text),
		TopWords:     index.MostCommon(a.topWords),
	}
}

// ParseURLList splits a newline-delimited URL list, dropping blank lines.
func ParseURLList(s string) []string {
	var urls []string
	for _, line := range strings.Split(s, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
