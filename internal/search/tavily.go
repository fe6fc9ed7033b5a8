// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/research-report/internal/httputil"
	"github.com/pdiddy/research-report/pkg/types"
)

// Tavily endpoints. Package-level vars for test substitution.
var (
	tavilySearchURL  = "https://api.tavily.com/search"
	tavilyExtractURL = "https://api.tavily.com/extract"
)

const (
	defaultTavilyDepth   = "basic"
	defaultTavilyTimeout = 30 * time.Second
)

// Tavily implements Provider and Extractor against the Tavily API.
type Tavily struct {
	apiKey string
	depth  string
	client *http.Client
}

// NewTavily creates a Tavily client from the search config.
func NewTavily(cfg types.SearchConfig) *Tavily {
	depth := cfg.Depth
	if depth == "" {
		depth = defaultTavilyDepth
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTavilyTimeout
	}
	return &Tavily{
		apiKey: cfg.APIKey,
		depth:  depth,
		client: &http.Client{Timeout: timeout},
	}
}

type tavilySearchRequest struct {
	Query             string `json:"query"`
	APIKey            string `json:"api_key"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

type tavilyExtractRequest struct {
	URLs   []string `json:"urls"`
	APIKey string   `json:"api_key"`
}

type tavilyExtractResponse struct {
	Results []struct {
		URL        string `json:"url"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
	FailedResults []struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"failed_results"`
}

// Search posts a query and returns at most maxResults hits.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int, includeRaw bool) ([]Hit, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	var resp tavilySearchResponse
	err := httputil.PostJSON(ctx, t.client, tavilySearchURL, tavilySearchRequest{
		Query:             query,
		APIKey:            t.apiKey,
		SearchDepth:       t.depth,
		MaxResults:        maxResults,
		IncludeRawContent: includeRaw,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, Hit{Title: r.Title, URL: r.URL, Content: r.Content})
		if maxResults > 0 && len(hits) >= maxResults {
			break
		}
	}
	return hits, nil
}

// Extract returns the raw content of url. A URL Tavily could not extract
// yields "" with no error.
func (t *Tavily) Extract(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return "", errors.New("tavily: API key is missing")
	}

	var resp tavilyExtractResponse
	err := httputil.PostJSON(ctx, t.client, tavilyExtractURL, tavilyExtractRequest{
		URLs:   []string{url},
		APIKey: t.apiKey,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("tavily extract: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return resp.Results[0].RawContent, nil
}
