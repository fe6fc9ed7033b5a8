// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-report/internal/metrics"
	"github.com/pdiddy/research-report/internal/stage"
	"github.com/pdiddy/research-report/pkg/types"
)

func resultFor(q string) *types.SearchResult {
	return &types.SearchResult{Title: "title " + q, URL: "https://example.com/" + q, Resume: "resume " + q}
}

func titles(rs []types.SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestDispatchMergesInSubmissionOrder(t *testing.T) {
	// Later queries finish first.
	delays := map[string]time.Duration{"a": 60 * time.Millisecond, "b": 30 * time.Millisecond, "c": 0}
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		time.Sleep(delays[q])
		return resultFor(q), nil
	})

	out, err := New(s, types.DispatchConfig{}).Dispatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"title a", "title b", "title c"}, titles(out.Results))
	assert.Empty(t, out.Failures)
}

func TestDispatchSkipsEmptySlots(t *testing.T) {
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		if q == "b" || q == "d" {
			return nil, nil
		}
		return resultFor(q), nil
	})

	queries := []string{"a", "b", "c", "d", "e"}
	out, err := New(s, types.DispatchConfig{}).Dispatch(context.Background(), queries)
	require.NoError(t, err)
	assert.Equal(t, []string{"title a", "title c", "title e"}, titles(out.Results))
	assert.Equal(t, 2, out.Empty)
	assert.LessOrEqual(t, len(out.Results), len(queries))
}

func TestDispatchIsolatesFailures(t *testing.T) {
	var calls atomic.Int32
	s := SearchFunc(func(ctx context.Context, q string) (*types.SearchResult, error) {
		calls.Add(1)
		if q == "b" {
			return nil, errors.New("HTTP 502")
		}
		// A sibling that outlives the failure must not see cancellation.
		time.Sleep(40 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return resultFor(q), nil
	})

	out, err := New(s, types.DispatchConfig{}).Dispatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"title a", "title c"}, titles(out.Results))

	require.Len(t, out.Failures, 1)
	assert.Equal(t, 1, out.Failures[0].Index)
	assert.Equal(t, "b", out.Failures[0].Query)
	assert.Contains(t, out.Failures[0].Error, "HTTP 502")
	assert.Contains(t, out.Failures[0].Error, "search failed")
}

func TestDispatchAbortPolicy(t *testing.T) {
	var finished atomic.Int32
	cause := errors.New("quota exceeded")
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		defer finished.Add(1)
		if q == "a" {
			return nil, cause
		}
		time.Sleep(20 * time.Millisecond)
		return resultFor(q), nil
	})

	cfg := types.DispatchConfig{FailurePolicy: types.FailureAbort}
	out, err := New(s, cfg).Dispatch(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, stage.ErrSearchFailed)
	assert.ErrorIs(t, err, cause)

	var ae *AbortedError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 3, ae.Total)
	assert.Len(t, ae.Failures, 1)
	assert.Equal(t, "1 of 3 queries failed: search failed: query \"a\": quota exceeded", ae.Error())

	assert.Equal(t, int32(3), finished.Load(), "abort waits for every worker")
	assert.Len(t, out.Results, 2)
}

func TestDispatchAbortPolicyNoFailures(t *testing.T) {
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		return resultFor(q), nil
	})
	cfg := types.DispatchConfig{FailurePolicy: types.FailureAbort}
	out, err := New(s, cfg).Dispatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, out.Results, 3)
}

func TestDispatchTimeoutPolicies(t *testing.T) {
	s := SearchFunc(func(ctx context.Context, q string) (*types.SearchResult, error) {
		if q == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return resultFor(q), nil
	})

	tests := []struct {
		name      string
		policy    types.TimeoutPolicy
		wantFails int
		wantEmpty int
	}{
		{name: "default fails", policy: "", wantFails: 1},
		{name: "fail", policy: types.TimeoutAsFailure, wantFails: 1},
		{name: "empty", policy: types.TimeoutAsEmpty, wantEmpty: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := metrics.New()
			cfg := types.DispatchConfig{WorkerTimeout: 20 * time.Millisecond, TimeoutPolicy: tt.policy}
			out, err := New(s, cfg, WithMetrics(rec)).Dispatch(context.Background(), []string{"fast", "slow", "fast2"})
			require.NoError(t, err)

			assert.Equal(t, []string{"title fast", "title fast2"}, titles(out.Results))
			assert.Len(t, out.Failures, tt.wantFails)
			assert.Equal(t, tt.wantEmpty, out.Empty)
			if tt.wantFails > 0 {
				assert.Equal(t, "slow", out.Failures[0].Query)
				assert.Contains(t, out.Failures[0].Error, "timed out")
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(rec.WorkerOutcome.WithLabelValues(metrics.OutcomeTimeout)))
			assert.Equal(t, 2.0, testutil.ToFloat64(rec.WorkerOutcome.WithLabelValues(metrics.OutcomeResult)))
		})
	}
}

func TestDispatchTimeoutWorkerIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		<-release
		return resultFor(q), nil
	})

	cfg := types.DispatchConfig{WorkerTimeout: 20 * time.Millisecond}
	start := time.Now()
	out, err := New(s, cfg).Dispatch(context.Background(), []string{"stuck"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, out.Failures, 1)
	assert.Contains(t, out.Failures[0].Error, "timed out")
}

func TestDispatchConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		inFlight.Add(-1)
		return resultFor(q), nil
	})

	queries := []string{"a", "b", "c", "d", "e", "f"}
	out, err := New(s, types.DispatchConfig{MaxConcurrency: 2}).Dispatch(context.Background(), queries)
	require.NoError(t, err)
	assert.Len(t, out.Results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestDispatchRecoversPanics(t *testing.T) {
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		if q == "bad" {
			panic("nil map")
		}
		return resultFor(q), nil
	})

	out, err := New(s, types.DispatchConfig{}).Dispatch(context.Background(), []string{"ok", "bad"})
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
	require.Len(t, out.Failures, 1)
	assert.Contains(t, out.Failures[0].Error, "worker panic: nil map")
}

func TestDispatchParentCancelled(t *testing.T) {
	s := SearchFunc(func(ctx context.Context, _ string) (*types.SearchResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := New(s, types.DispatchConfig{}).Dispatch(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, stage.ErrSearchFailed)
}

func TestDispatchMetricsPerOutcome(t *testing.T) {
	s := SearchFunc(func(_ context.Context, q string) (*types.SearchResult, error) {
		switch q {
		case "empty":
			return nil, nil
		case "fail":
			return nil, fmt.Errorf("boom")
		}
		return resultFor(q), nil
	})
	rec := metrics.New()
	_, err := New(s, types.DispatchConfig{}, WithMetrics(rec)).Dispatch(context.Background(), []string{"a", "empty", "fail", "b"})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.WorkerOutcome.WithLabelValues(metrics.OutcomeResult)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.WorkerOutcome.WithLabelValues(metrics.OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.WorkerOutcome.WithLabelValues(metrics.OutcomeFailed)))
}
