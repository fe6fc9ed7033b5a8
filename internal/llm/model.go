// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the generative model behind a single call: given a
// prompt, return text. Structured responses are decoded and validated at
// this boundary so callers only ever see typed values.
package llm

import "context"

// Request is one prompt sent to a model.
type Request struct {
	// Prompt is the full instruction text.
	Prompt string

	// JSON asks the provider to constrain the response to a JSON object.
	JSON bool
}

// Model is a generative model. Implementations must be safe for concurrent
// use; search workers share one instance.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ModelFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
