// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/research-report/internal/container"
	"github.com/pdiddy/research-report/internal/dispatch"
	"github.com/pdiddy/research-report/internal/llm"
	"github.com/pdiddy/research-report/internal/metrics"
	"github.com/pdiddy/research-report/internal/pipeline"
	"github.com/pdiddy/research-report/internal/plan"
	"github.com/pdiddy/research-report/internal/render"
	"github.com/pdiddy/research-report/internal/search"
	"github.com/pdiddy/research-report/internal/synth"
	"github.com/pdiddy/research-report/pkg/types"
)

// newModel creates the OpenAI client for one model role.
func newModel(cfg types.ModelConfig, name string) (llm.Model, error) {
	m, err := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   name,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// newPrinter selects the PDF backend. PrinterNone yields a nil Printer,
// which makes the renderer write Markdown only.
func newPrinter(ctx context.Context, cfg types.RenderConfig) (render.Printer, error) {
	switch cfg.Printer {
	case types.PrinterNone:
		return nil, nil
	case types.PrinterContainer:
		rt, err := container.Detect(ctx)
		if err != nil {
			return nil, err
		}
		p, err := render.NewContainerPrinter(ctx, rt, cfg.ContainerImage)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return &render.ChromePrinter{ExecPath: cfg.ChromePath, Timeout: cfg.Timeout}, nil
	}
}

func newRenderer(ctx context.Context, cfg types.RenderConfig) (*render.Renderer, error) {
	printer, err := newPrinter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setting up %s printer: %w", cfg.Printer, err)
	}
	return render.New(cfg.OutputDir, printer, render.WithLogger(logger)), nil
}

func newSearcher(cfg types.SearchConfig, summarizer llm.Model) *search.Worker {
	tavily := search.NewTavily(cfg)
	var extractor search.Extractor = tavily
	if cfg.Extractor == types.ExtractorReadability {
		extractor = search.NewReadability(cfg.HTTPConfig)
	}
	return search.NewWorker(tavily, extractor, summarizer,
		search.WithMaxContentChars(cfg.MaxContentChars),
		search.WithLogger(logger))
}

// newPipeline wires every stage from cfg. Progress lines go to progress.
func newPipeline(ctx context.Context, cfg types.PipelineConfig, rec *metrics.Recorder, progress io.Writer) (*pipeline.Pipeline, error) {
	fast, err := newModel(cfg.Model, cfg.Model.Fast)
	if err != nil {
		return nil, fmt.Errorf("fast model: %w", err)
	}
	reasoning, err := newModel(cfg.Model, cfg.Model.Reasoning)
	if err != nil {
		return nil, fmt.Errorf("reasoning model: %w", err)
	}
	renderer, err := newRenderer(ctx, cfg.Render)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Deps{
		Planner: plan.New(fast, logger),
		Dispatcher: dispatch.New(newSearcher(cfg.Search, fast), cfg.Dispatch,
			dispatch.WithMetrics(rec),
			dispatch.WithLogger(logger)),
		Synthesizer: synth.New(reasoning, logger),
		Renderer:    renderer,
		Metrics:     rec,
		Logger:      logger,
		Progress:    progress,
	}), nil
}
