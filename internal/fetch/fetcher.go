package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel fetches in FetchAll.
const DefaultConcurrency = 4

// Result is the outcome of fetching one URL. When OK is false, Text is empty
// and Err says why.
type Result struct {
	URL  string `json:"url"`
	Text string `json:"-"`
	OK   bool   `json:"ok"`
	Err  error  `json:"-"`
}

// Fetcher retrieves the readable text of a URL. Implementations never return
// an error to the caller; failures are reported through Result.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) Result
}

// HTTPFetcher fetches pages over HTTP and extracts their text.
type HTTPFetcher struct {
	opts   Options
	logger *zap.Logger
	render func(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// NewHTTPFetcher creates a fetcher. A nil opts uses DefaultOptions.
func NewHTTPFetcher(opts *Options, logger *zap.Logger) *HTTPFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &HTTPFetcher{opts: *opts, logger: logger}
	f.render = func(ctx context.Context, url string, timeout time.Duration) (string, error) {
		return WithBrowser(ctx, url, timeout, f.logger)
	}
	return f
}

// Fetch retrieves rawURL within timeout and returns its text. A timeout of
// zero uses the fetcher's configured timeout.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) Result {
	opts := f.opts
	if timeout > 0 {
		opts.Timeout = timeout
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	text, err := f.fetchText(ctx, rawURL, &opts)
	if err != nil {
		f.logger.Warn("failed to fetch content",
			zap.String("url", rawURL),
			zap.Error(err))
		return Result{URL: rawURL, Err: err}
	}

	f.logger.Debug("fetched content",
		zap.String("url", rawURL),
		zap.Int("chars", len(text)))
	return Result{URL: rawURL, Text: text, OK: true}
}

func (f *HTTPFetcher) fetchText(ctx context.Context, rawURL string, opts *Options) (string, error) {
	page, err := URL(ctx, rawURL, opts)
	if err != nil {
		return "", err
	}

	kind := DetectKind(page.Body, page.ContentType)
	if kind == KindUnsupported {
		return "", &Error{URL: page.URL, Message: "unsupported content type " + page.ContentType}
	}

	decoded, err := DecodeBody(page.Body, page.ContentType)
	if err != nil {
		return "", &Error{URL: page.URL, Message: "failed to decode body", Cause: err}
	}

	if kind == KindText {
		return cleanWhitespace(decoded), nil
	}

	text, err := ExtractText(decoded)
	if err != nil {
		return "", &Error{URL: page.URL, Message: "failed to extract text", Cause: err}
	}

	if opts.UseBrowser && ShouldUseBrowser(text) {
		text = f.renderFallback(ctx, page.URL, opts, text)
	}
	return text, nil
}

// renderFallback returns the browser-rendered text when it is longer than the
// plain HTTP extraction, and the original text otherwise.
func (f *HTTPFetcher) renderFallback(ctx context.Context, url string, opts *Options, text string) string {
	timeout := opts.BrowserTimeout
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}

	html, err := f.render(ctx, url, timeout)
	if err != nil {
		f.logger.Info("browser fallback failed, keeping HTTP text",
			zap.String("url", url),
			zap.Error(err))
		return text
	}

	rendered, err := ExtractText(html)
	if err != nil || len(rendered) <= len(text) {
		return text
	}
	return rendered
}

// FetchAll fetches urls concurrently and returns one result per URL in input
// order. A failing URL never affects the others.
func FetchAll(ctx context.Context, f Fetcher, urls []string, timeout time.Duration) []Result {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = f.Fetch(gctx, u, timeout)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

