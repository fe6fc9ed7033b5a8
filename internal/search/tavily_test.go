// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-report/internal/httputil"
	"github.com/pdiddy/research-report/pkg/types"
)

// withTavilyServer points both Tavily endpoints at ts for the test.
func withTavilyServer(t *testing.T, ts *httptest.Server) {
	t.Helper()
	oldSearch, oldExtract := tavilySearchURL, tavilyExtractURL
	tavilySearchURL = ts.URL + "/search"
	tavilyExtractURL = ts.URL + "/extract"
	t.Cleanup(func() {
		tavilySearchURL, tavilyExtractURL = oldSearch, oldExtract
	})
}

func TestTavilySearch(t *testing.T) {
	var got tavilySearchRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results": [
			{"title": "Surface codes", "url": "https://a.example/surface", "content": "snippet a"},
			{"title": "Other", "url": "https://b.example", "content": "snippet b"}
		]}`))
	}))
	defer ts.Close()
	withTavilyServer(t, ts)

	tv := NewTavily(types.SearchConfig{APIKey: "tvly-test"})
	hits, err := tv.Search(context.Background(), "surface codes", 1, false)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, Hit{Title: "Surface codes", URL: "https://a.example/surface", Content: "snippet a"}, hits[0])
	assert.Equal(t, "surface codes", got.Query)
	assert.Equal(t, "tvly-test", got.APIKey)
	assert.Equal(t, "basic", got.SearchDepth)
	assert.Equal(t, 1, got.MaxResults)
	assert.False(t, got.IncludeRawContent)
}

func TestTavilySearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "invalid api key"}`))
	}))
	defer ts.Close()
	withTavilyServer(t, ts)

	_, err := NewTavily(types.SearchConfig{APIKey: "bad"}).Search(context.Background(), "q", 1, false)
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestTavilyMissingKey(t *testing.T) {
	tv := NewTavily(types.SearchConfig{})
	_, err := tv.Search(context.Background(), "q", 1, false)
	assert.ErrorContains(t, err, "API key is missing")
	_, err = tv.Extract(context.Background(), "https://a.example")
	assert.ErrorContains(t, err, "API key is missing")
}

func TestTavilyExtract(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "raw content",
			body: `{"results": [{"url": "https://a.example", "raw_content": "# Page\n\nBody text."}], "failed_results": []}`,
			want: "# Page\n\nBody text.",
		},
		{
			name: "failed extraction is empty",
			body: `{"results": [], "failed_results": [{"url": "https://a.example", "error": "blocked"}]}`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got tavilyExtractRequest
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/extract", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()
			withTavilyServer(t, ts)

			text, err := NewTavily(types.SearchConfig{APIKey: "k"}).Extract(context.Background(), "https://a.example")
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
			assert.Equal(t, []string{"https://a.example"}, got.URLs)
		})
	}
}
