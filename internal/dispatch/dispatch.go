// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch fans a query list out to concurrent search workers and
// merges their results back in query order.
//
// Each worker writes only to its own slot, indexed by the query's position,
// so the merge needs no locks and its order never depends on which worker
// finished first. One worker's failure never cancels its siblings.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/metrics"
	"github.com/pdiddy/research-report/internal/stage"
	"github.com/pdiddy/research-report/pkg/types"
)

// Searcher runs one query. A nil result with a nil error means the query
// found no content.
type Searcher interface {
	Search(ctx context.Context, query string) (*types.SearchResult, error)
}

// SearchFunc adapts a function to the Searcher interface.
type SearchFunc func(ctx context.Context, query string) (*types.SearchResult, error)

// Search calls f.
func (f SearchFunc) Search(ctx context.Context, query string) (*types.SearchResult, error) {
	return f(ctx, query)
}

// Outcome is the merged result of one dispatch.
type Outcome struct {
	// Results holds one entry per worker that produced content, in query order.
	Results []types.SearchResult

	// Failures holds one entry per failed worker, in query order.
	Failures []types.QueryFailure

	// Empty counts workers that found no content.
	Empty int
}

// AbortedError is returned under the abort policy when any worker failed.
// It is reported only after every worker has finished.
type AbortedError struct {
	Total    int
	Failures []types.QueryFailure
	Errs     []error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("%d of %d queries failed: %v", len(e.Errs), e.Total, e.Errs[0])
}

// Unwrap matches stage.ErrSearchFailed and every worker error.
func (e *AbortedError) Unwrap() []error {
	return append([]error{stage.ErrSearchFailed}, e.Errs...)
}

// Dispatcher runs one worker per query.
type Dispatcher struct {
	searcher Searcher
	cfg      types.DispatchConfig
	metrics  *metrics.Recorder
	logger   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records worker outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(d *Dispatcher) { d.metrics = r }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Dispatcher. Unset policies default to a failing timeout
// and a partial failure policy.
func New(s Searcher, cfg types.DispatchConfig, opts ...Option) *Dispatcher {
	if cfg.TimeoutPolicy == "" {
		cfg.TimeoutPolicy = types.TimeoutAsFailure
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = types.FailurePartial
	}
	d := &Dispatcher{searcher: s, cfg: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// slot is one worker's private output.
type slot struct {
	result   *types.SearchResult
	err      error
	timedOut bool
}

// Dispatch runs every query and merges the results in submission order.
// Under the partial policy worker failures are reported in the outcome and
// the error is nil unless ctx itself was cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, queries []string) (Outcome, error) {
	log := logging.From(ctx, d.logger)
	slots := make([]slot, len(queries))

	// A plain Group: a failed worker must not cancel its siblings.
	var g errgroup.Group
	if d.cfg.MaxConcurrency > 0 {
		g.SetLimit(d.cfg.MaxConcurrency)
	}
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			slots[i] = d.run(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	out := Outcome{}
	var errs []error
	for i, s := range slots {
		switch {
		case s.err != nil:
			out.Failures = append(out.Failures, types.QueryFailure{Index: i, Query: queries[i], Error: s.err.Error()})
			errs = append(errs, s.err)
		case s.result != nil:
			out.Results = append(out.Results, *s.result)
		default:
			out.Empty++
		}
	}

	log.Info("dispatch complete",
		zap.Int("queries", len(queries)),
		zap.Int("results", len(out.Results)),
		zap.Int("empty", out.Empty),
		zap.Int("failed", len(out.Failures)))

	if err := ctx.Err(); err != nil {
		return out, stage.Fail(stage.Search, err)
	}
	if d.cfg.FailurePolicy == types.FailureAbort && len(errs) > 0 {
		return out, &AbortedError{Total: len(queries), Failures: out.Failures, Errs: errs}
	}
	return out, nil
}

// run executes one worker under its own deadline and classifies the result.
func (d *Dispatcher) run(ctx context.Context, query string) slot {
	log := logging.From(ctx, d.logger).With(zap.String("query", query))
	start := time.Now()

	wctx := ctx
	if d.cfg.WorkerTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, d.cfg.WorkerTimeout)
		defer cancel()
	}

	done := make(chan slot, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("worker panicked", zap.Any("panic", r))
				done <- slot{err: fmt.Errorf("worker panic: %v", r)}
			}
		}()
		res, err := d.searcher.Search(wctx, query)
		done <- slot{result: res, err: err}
	}()

	var s slot
	select {
	case s = <-done:
	case <-wctx.Done():
		s = slot{err: wctx.Err()}
	}

	if s.err != nil && ctx.Err() == nil && errors.Is(wctx.Err(), context.DeadlineExceeded) {
		s.timedOut = true
		s.err = fmt.Errorf("worker timed out after %s: %w", d.cfg.WorkerTimeout, context.DeadlineExceeded)
	}
	s = d.classify(log, query, s)

	outcome := metrics.OutcomeResult
	switch {
	case s.timedOut:
		outcome = metrics.OutcomeTimeout
	case s.err != nil:
		outcome = metrics.OutcomeFailed
	case s.result == nil:
		outcome = metrics.OutcomeEmpty
	}
	d.metrics.ObserveWorker(outcome, time.Since(start))
	log.Debug("worker finished", zap.String("outcome", outcome), zap.Duration("elapsed", time.Since(start)))
	return s
}

// classify applies the timeout policy and makes every failure match
// stage.ErrSearchFailed.
func (d *Dispatcher) classify(log *zap.Logger, query string, s slot) slot {
	if s.err == nil {
		return s
	}
	if s.timedOut && d.cfg.TimeoutPolicy == types.TimeoutAsEmpty {
		log.Info("worker timed out, treating as no content", zap.Duration("timeout", d.cfg.WorkerTimeout))
		return slot{timedOut: true}
	}
	if s.timedOut {
		log.Warn("worker timed out", zap.Duration("timeout", d.cfg.WorkerTimeout))
	}
	if !errors.Is(s.err, stage.ErrSearchFailed) {
		s.err = stage.Fail(stage.Search, fmt.Errorf("query %q: %w", query, s.err))
	}
	return s
}
