// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a research topic into an ordered list of web search
// queries using the fast model.
package plan

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-report/internal/llm"
	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/prompt"
	"github.com/pdiddy/research-report/internal/stage"
)

const (
	// MinQueries is the fewest queries a plan may hold.
	MinQueries = 3
	// MaxQueries is the most queries a plan may hold; extras are dropped.
	MaxQueries = 5
)

// queryList is the structured response the planner asks for.
type queryList struct {
	Queries []string `json:"queries"`
}

// Planner generates search queries for a topic.
type Planner struct {
	model  llm.Model
	logger *zap.Logger
}

// New creates a Planner backed by model. A nil logger discards output.
func New(model llm.Model, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{model: model, logger: logger}
}

// Plan returns 3 to 5 queries in the order the model produced them.
// A blank topic fails with stage.ErrInvalidInput before any model call;
// model and decoding failures fail with stage.ErrPlanningFailed.
func (p *Planner) Plan(ctx context.Context, topic string) ([]string, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, stage.Fail(stage.Input, errors.New("topic is empty"))
	}

	text, err := prompt.Queries(topic)
	if err != nil {
		return nil, stage.Fail(stage.Planning, err)
	}

	var resp queryList
	if err := llm.CompleteJSON(ctx, p.model, text, &resp); err != nil {
		return nil, stage.Fail(stage.Planning, err)
	}

	log := logging.From(ctx, p.logger)
	queries := normalize(resp.Queries)
	if len(queries) < MinQueries {
		return nil, stage.Failf(stage.Planning, "model returned %d usable queries, need at least %d", len(queries), MinQueries)
	}
	if len(resp.Queries) > MaxQueries {
		log.Debug("truncating query list",
			zap.Int("returned", len(resp.Queries)), zap.Int("kept", len(queries)))
	}

	log.Info("planned queries", zap.Int("count", len(queries)), zap.Strings("queries", queries))
	return queries, nil
}

// normalize trims entries, drops blanks, and keeps at most MaxQueries.
func normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == MaxQueries {
			break
		}
	}
	return out
}
