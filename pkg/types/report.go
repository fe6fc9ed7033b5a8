// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-report pipeline:
// the report state threaded through the stages, the per-query search results
// merged into it, and the stage configurations.
package types

// SearchResult is one summarized web page produced by a search worker.
// Empty fields mean the value was absent at the source.
type SearchResult struct {
	// Title is the page title as returned by the search provider.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// URL is the page address.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Resume is the query-focused synthesis of the page content.
	Resume string `json:"resume,omitempty" yaml:"resume,omitempty"`
}

// QueryFailure records a worker that failed with a transport, API, or
// model error. Queries that simply found no content are not failures.
type QueryFailure struct {
	// Index is the query's position in the planned query list.
	Index int `json:"index" yaml:"index"`

	// Query is the search string the worker ran.
	Query string `json:"query" yaml:"query"`

	// Error is the failure message.
	Error string `json:"error" yaml:"error"`
}

// ReportState is the single unit of data threaded through the pipeline.
// Topic is set once; Queries is written by the planner; Results and
// Failures by the fan-out merge; Report by the synthesizer.
type ReportState struct {
	// RunID identifies the run in logs, metrics, and the run record.
	RunID string `json:"run_id" yaml:"run_id"`

	// Topic is the user-supplied research subject.
	Topic string `json:"topic" yaml:"topic"`

	// Queries is the planner's ordered query list.
	Queries []string `json:"queries" yaml:"queries"`

	// Results holds one entry per worker that produced content, in query
	// order. Position i is citation [i+1] in the report.
	Results []SearchResult `json:"results" yaml:"results"`

	// Failures lists workers that failed, in query order.
	Failures []QueryFailure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// Report is the final cited report text.
	Report string `json:"report,omitempty" yaml:"report,omitempty"`
}
