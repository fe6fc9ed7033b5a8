// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// jsonBlockPattern matches a JSON object inside a fenced code block.
	jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// jsonObjectPattern matches the outermost-looking JSON object.
	jsonObjectPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ErrNoJSON is returned when a response contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in model response")

// ExtractJSON pulls a JSON object out of a model response. It accepts bare
// objects, objects wrapped in prose, and fenced ```json blocks, and drops
// trailing commas. It returns "" when no object is present.
func ExtractJSON(content string) string {
	var raw string
	if m := jsonBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = jsonObjectPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}

// Decode extracts the JSON object from content and unmarshals it into v.
func Decode(content string, v any) error {
	raw := ExtractJSON(content)
	if raw == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("parsing model JSON: %w", err)
	}
	return nil
}

// CompleteJSON sends prompt in JSON mode and decodes the reply into v.
func CompleteJSON(ctx context.Context, m Model, prompt string, v any) error {
	out, err := m.Complete(ctx, Request{Prompt: prompt, JSON: true})
	if err != nil {
		return err
	}
	return Decode(out, v)
}

// CompleteText sends prompt and returns the reply verbatim. A blank reply is
// an error.
func CompleteText(ctx context.Context, m Model, prompt string) (string, error) {
	out, err := m.Complete(ctx, Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errors.New("model returned empty content")
	}
	return out, nil
}
