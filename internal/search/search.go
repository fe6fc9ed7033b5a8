// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs one web search per query, extracts the top page, and
// summarizes it against the query with the fast model.
//
// A query that finds nothing is not an error: Worker.Search returns nil, nil.
// Transport, API and model failures return a *FailedError.
package search

import (
	"context"
	"fmt"

	"github.com/pdiddy/research-report/internal/stage"
)

// Hit is one search provider result.
type Hit struct {
	Title   string
	URL     string
	Content string
}

// Provider is a web search API. Each provider implements this interface per
// the Strategy pattern.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int, includeRaw bool) ([]Hit, error)
}

// Extractor pulls readable text for a URL. An empty string with a nil
// error means the page had no extractable content.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// FailedError reports a worker that could not complete its query.
type FailedError struct {
	Query string
	Err   error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("search failed for query %q: %v", e.Query, e.Err)
}

// Unwrap matches stage.ErrSearchFailed and the underlying cause.
func (e *FailedError) Unwrap() []error {
	return []error{stage.ErrSearchFailed, e.Err}
}
