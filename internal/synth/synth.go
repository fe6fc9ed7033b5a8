// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth writes the final cited report from the merged search
// results using the reasoning model.
package synth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-report/internal/llm"
	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/prompt"
	"github.com/pdiddy/research-report/internal/stage"
	"github.com/pdiddy/research-report/pkg/types"
)

// ReferencesMarker separates the model-written body from the generated
// references. The renderer splits on its trimmed form.
const ReferencesMarker = "\n\n References:\n"

// entrySeparator closes each entry of the context block.
const entrySeparator = "================"

// Synthesizer turns search results into a report.
type Synthesizer struct {
	model  llm.Model
	logger *zap.Logger
}

// New creates a Synthesizer backed by the reasoning model.
func New(model llm.Model, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{model: model, logger: logger}
}

// Synthesize returns the model's report body followed by a References
// section with one line per result. Citation [i] is results[i-1]. An empty
// result list is valid and yields an empty References section.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, results []types.SearchResult) (string, error) {
	log := logging.From(ctx, s.logger)

	text, err := prompt.FinalReport(topic, ContextBlock(results))
	if err != nil {
		return "", stage.Fail(stage.Synthesis, err)
	}
	body, err := llm.CompleteText(ctx, s.model, text)
	if err != nil {
		return "", stage.Fail(stage.Synthesis, err)
	}

	log.Info("report synthesized", zap.Int("sources", len(results)), zap.Int("body_chars", len(body)))
	return body + ReferencesMarker + References(results), nil
}

// ContextBlock numbers each result for the model, starting at 1.
func ContextBlock(results []types.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d]\n\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", r.Title)
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		fmt.Fprintf(&b, "Content: %s\n", r.Resume)
		b.WriteString(entrySeparator + "\n\n")
	}
	return b.String()
}

// References lists each result as a numbered Markdown link.
func References(results []types.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] - [%s](%s)\n", i+1, r.Title, r.URL)
	}
	return b.String()
}
