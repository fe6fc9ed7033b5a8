// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-shiori/go-readability"

	"github.com/pdiddy/research-report/internal/httputil"
	"github.com/pdiddy/research-report/pkg/types"
)

const (
	defaultFetchTimeout = 20 * time.Second
	defaultUserAgent    = "research-report/0.1"
)

var excessiveLines = regexp.MustCompile(`\n{3,}`)

// ReadabilityExtractor fetches a page directly, isolates the article with
// readability, and converts it to Markdown. It replaces Tavily's extract
// endpoint when search.extractor is "readability".
type ReadabilityExtractor struct {
	client    *http.Client
	userAgent string
	converter *md.Converter
}

// NewReadability creates an extractor from the shared HTTP settings.
func NewReadability(cfg types.HTTPConfig) *ReadabilityExtractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &ReadabilityExtractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: ua,
		converter: md.NewConverter("", true, nil),
	}
}

// Extract returns the article body of rawURL as Markdown. Pages that are
// not HTML, or where readability finds no article, yield "".
func (r *ReadabilityExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	u, err := nurl.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", rawURL, err)
	}

	body, ctype, err := httputil.Get(ctx, r.client, rawURL, r.userAgent)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	if ctype != "" && !strings.Contains(ctype, "html") {
		return "", nil
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return "", nil
	}

	text := ""
	if strings.TrimSpace(article.Content) != "" {
		if converted, err := r.converter.ConvertString(article.Content); err == nil {
			text = converted
		}
	}
	if strings.TrimSpace(text) == "" {
		text = article.TextContent
	}
	text = excessiveLines.ReplaceAllString(strings.TrimSpace(text), "\n\n")
	if text != "" && article.Title != "" && !strings.HasPrefix(text, "#") {
		text = "# " + strings.TrimSpace(article.Title) + "\n\n" + text
	}
	return text, nil
}
