// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline threads one ReportState through planning, fan-out
// search, synthesis and rendering.
//
// Planning and synthesis failures end the run. Search failures are isolated
// per query unless the dispatcher runs under the abort policy. A render
// failure keeps the synthesized report: the returned Result carries it
// alongside the error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-report/internal/dispatch"
	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/metrics"
	"github.com/pdiddy/research-report/internal/render"
	"github.com/pdiddy/research-report/internal/stage"
	"github.com/pdiddy/research-report/pkg/types"
)

// Planner produces the ordered query list for a topic.
type Planner interface {
	Plan(ctx context.Context, topic string) ([]string, error)
}

// Dispatcher runs the queries and merges their results.
type Dispatcher interface {
	Dispatch(ctx context.Context, queries []string) (dispatch.Outcome, error)
}

// Synthesizer writes the cited report.
type Synthesizer interface {
	Synthesize(ctx context.Context, topic string, results []types.SearchResult) (string, error)
}

// Renderer persists the report.
type Renderer interface {
	Render(ctx context.Context, report, subjectHint string) (render.Output, error)
}

// Deps are the pipeline's collaborators. Renderer, Metrics, Logger,
// Progress and NewRunID are optional.
type Deps struct {
	Planner     Planner
	Dispatcher  Dispatcher
	Synthesizer Synthesizer
	Renderer    Renderer
	Metrics     *metrics.Recorder
	Logger      *zap.Logger
	Progress    io.Writer
	NewRunID    func() string
}

// Result is the outcome of a run.
type Result struct {
	State  *types.ReportState
	Output render.Output
}

// Pipeline runs research-and-report jobs.
type Pipeline struct {
	deps Deps
}

// New creates a Pipeline.
func New(d Deps) *Pipeline {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Progress == nil {
		d.Progress = io.Discard
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}
	return &Pipeline{deps: d}
}

// Run researches topic and returns the populated state. On error the
// Result still holds everything produced before the failing stage.
func (p *Pipeline) Run(ctx context.Context, topic string) (*Result, error) {
	st := &types.ReportState{RunID: p.deps.NewRunID(), Topic: topic}
	res := &Result{State: st}
	ctx, log := p.scope(ctx, st)
	log.Info("run started", zap.String("topic", topic))

	err := p.timed(stage.Planning, func() error {
		queries, err := p.deps.Planner.Plan(ctx, topic)
		if err != nil {
			return err
		}
		st.Queries = queries
		return nil
	})
	if err != nil {
		return res, p.fail(log, stage.Planning, err)
	}
	fmt.Fprintf(p.deps.Progress, "planned %d queries\n", len(st.Queries))
	for i, q := range st.Queries {
		fmt.Fprintf(p.deps.Progress, "  %d. %s\n", i+1, q)
	}

	err = p.timed(stage.Search, func() error {
		out, err := p.deps.Dispatcher.Dispatch(ctx, st.Queries)
		st.Results = out.Results
		st.Failures = out.Failures
		return err
	})
	for _, f := range st.Failures {
		fmt.Fprintf(p.deps.Progress, "warning: query %d failed: %s\n", f.Index+1, f.Error)
	}
	if err != nil {
		return res, p.fail(log, stage.Search, err)
	}
	fmt.Fprintf(p.deps.Progress, "collected %d results from %d queries\n", len(st.Results), len(st.Queries))

	return p.finish(ctx, log, res)
}

// Resynthesize reruns synthesis and rendering over a saved state without
// searching again.
func (p *Pipeline) Resynthesize(ctx context.Context, st *types.ReportState) (*Result, error) {
	if st == nil || strings.TrimSpace(st.Topic) == "" {
		return &Result{State: st}, stage.Fail(stage.Input, errors.New("saved run has no topic"))
	}
	if st.RunID == "" {
		st.RunID = p.deps.NewRunID()
	}
	st.Report = ""
	res := &Result{State: st}
	ctx, log := p.scope(ctx, st)
	log.Info("resynthesis started", zap.Int("results", len(st.Results)))
	return p.finish(ctx, log, res)
}

// finish runs synthesis and, when configured, rendering.
func (p *Pipeline) finish(ctx context.Context, log *zap.Logger, res *Result) (*Result, error) {
	st := res.State
	err := p.timed(stage.Synthesis, func() error {
		report, err := p.deps.Synthesizer.Synthesize(ctx, st.Topic, st.Results)
		if err != nil {
			return err
		}
		st.Report = report
		return nil
	})
	if err != nil {
		return res, p.fail(log, stage.Synthesis, err)
	}
	p.deps.Metrics.SetResults(len(st.Results))
	fmt.Fprintf(p.deps.Progress, "report synthesized with %d citations\n", len(st.Results))

	if p.deps.Renderer == nil {
		log.Info("run finished")
		return res, nil
	}

	err = p.timed(stage.Render, func() error {
		out, err := p.deps.Renderer.Render(ctx, st.Report, st.Topic)
		res.Output = out
		return err
	})
	if err != nil {
		return res, p.fail(log, stage.Render, err)
	}
	log.Info("run finished",
		zap.String("markdown", res.Output.MarkdownPath),
		zap.String("pdf", res.Output.PDFPath))
	return res, nil
}

// scope attaches a run-scoped logger to ctx.
func (p *Pipeline) scope(ctx context.Context, st *types.ReportState) (context.Context, *zap.Logger) {
	log := p.deps.Logger.With(zap.String("run_id", st.RunID))
	return logging.Into(ctx, log), log
}

func (p *Pipeline) timed(s stage.Name, fn func() error) error {
	start := time.Now()
	err := fn()
	p.deps.Metrics.ObserveStage(string(s), time.Since(start), err)
	return err
}

// fail attributes err to stage s unless it already names a stage.
func (p *Pipeline) fail(log *zap.Logger, s stage.Name, err error) error {
	if _, ok := stage.Of(err); !ok {
		err = stage.Fail(s, err)
	}
	log.Error("run failed", zap.String("stage", string(s)), zap.Error(err))
	return err
}
