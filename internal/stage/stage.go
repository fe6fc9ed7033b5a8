// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stage names the pipeline stages and the error kinds each one
// reports. Callers classify failures with errors.Is against the Err*
// sentinels; the wrapped cause stays reachable through the same chain.
package stage

import (
	"errors"
	"fmt"
)

// Name identifies a pipeline stage.
type Name string

const (
	Input     Name = "input"
	Planning  Name = "planning"
	Search    Name = "search"
	Synthesis Name = "synthesis"
	Render    Name = "render"
)

// Error kinds. Every error returned by a stage matches exactly one of these.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrPlanningFailed  = errors.New("planning failed")
	ErrSearchFailed    = errors.New("search failed")
	ErrSynthesisFailed = errors.New("synthesis failed")
	ErrRenderFailed    = errors.New("render failed")
)

var kinds = map[Name]error{
	Input:     ErrInvalidInput,
	Planning:  ErrPlanningFailed,
	Search:    ErrSearchFailed,
	Synthesis: ErrSynthesisFailed,
	Render:    ErrRenderFailed,
}

// Error is a failure attributed to one stage.
type Error struct {
	Stage Name
	Err   error
}

// Fail wraps err as a failure of stage s.
func Fail(s Name, err error) *Error {
	return &Error{Stage: s, Err: err}
}

// Failf formats a failure of stage s.
func Failf(s Name, format string, args ...any) *Error {
	return &Error{Stage: s, Err: fmt.Errorf(format, args...)}
}

// Kind returns the sentinel for the stage.
func (e *Error) Kind() error {
	if k, ok := kinds[e.Stage]; ok {
		return k
	}
	return fmt.Errorf("%s failed", e.Stage)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind(), e.Err)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	return []error{e.Kind(), e.Err}
}

// Of reports the stage an error is attributed to, if any.
func Of(err error) (Name, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
