// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/research-report/internal/llm"
	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/prompt"
	"github.com/pdiddy/research-report/pkg/types"
)

// DefaultMaxContentChars caps the page text handed to the summarizer.
const DefaultMaxContentChars = 32000

// Worker handles one query end to end: search, extract, summarize.
// A Worker holds no per-query state and is safe for concurrent use.
type Worker struct {
	provider  Provider
	extractor Extractor
	model     llm.Model
	maxChars  int
	logger    *zap.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithMaxContentChars sets the content budget. Values <= 0 keep the default.
func WithMaxContentChars(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxChars = n
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker. The extractor is usually the provider itself.
func NewWorker(provider Provider, extractor Extractor, model llm.Model, opts ...WorkerOption) *Worker {
	w := &Worker{
		provider:  provider,
		extractor: extractor,
		model:     model,
		maxChars:  DefaultMaxContentChars,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Search returns the summarized top page for query, or nil when the search
// found no hit or the page had no extractable content.
func (w *Worker) Search(ctx context.Context, query string) (*types.SearchResult, error) {
	log := logging.From(ctx, w.logger).With(zap.String("query", query))

	hits, err := w.provider.Search(ctx, query, 1, false)
	if err != nil {
		return nil, w.fail(log, query, err)
	}
	if len(hits) == 0 {
		log.Info("no search hits")
		return nil, nil
	}
	hit := hits[0]

	content, err := w.extractor.Extract(ctx, hit.URL)
	if err != nil {
		return nil, w.fail(log, query, err)
	}
	if strings.TrimSpace(content) == "" {
		log.Info("no extractable content", zap.String("url", hit.URL))
		return nil, nil
	}
	content = truncate(content, w.maxChars)

	text, err := prompt.Summary(query, content)
	if err != nil {
		return nil, w.fail(log, query, err)
	}
	resume, err := llm.CompleteText(ctx, w.model, text)
	if err != nil {
		return nil, w.fail(log, query, err)
	}

	log.Debug("summarized page", zap.String("url", hit.URL), zap.Int("content_chars", len(content)))
	return &types.SearchResult{Title: hit.Title, URL: hit.URL, Resume: resume}, nil
}

func (w *Worker) fail(log *zap.Logger, query string, err error) error {
	log.Warn("search worker failed", zap.Error(err))
	return &FailedError{Query: query, Err: err}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
