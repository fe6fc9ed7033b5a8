// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render persists a finished report as Markdown and as a styled
// PDF, under timestamped names derived from the report's subject.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/stage"
)

// DefaultDir is where reports are written when no directory is configured.
const DefaultDir = "reports"

// TimestampFormat is the filename timestamp layout.
const TimestampFormat = "20060102_150405"

// ErrNoPrinter is returned when a PDF is requested without a printer.
var ErrNoPrinter = errors.New("no PDF printer configured")

// Output describes the files one render produced.
type Output struct {
	MarkdownPath string
	PDFPath      string
	Subject      string
	Timestamp    string
}

// Renderer writes reports into one directory.
type Renderer struct {
	dir     string
	printer Printer
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock replaces time.Now, for deterministic filenames.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Renderer. A nil printer writes Markdown only.
func New(dir string, printer Printer, opts ...Option) *Renderer {
	if dir == "" {
		dir = DefaultDir
	}
	r := &Renderer{dir: dir, printer: printer, now: time.Now, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Dir returns the output directory.
func (r *Renderer) Dir() string { return r.dir }

// Render writes report as <subject>_<timestamp>.md and then .pdf. The
// Markdown is written first so a PDF failure still leaves it on disk; the
// returned Output lists whatever was written, even alongside an error.
func (r *Renderer) Render(ctx context.Context, report, subjectHint string) (Output, error) {
	log := logging.From(ctx, r.logger)
	now := r.now()
	out := Output{
		Subject:   Subject(report, subjectHint),
		Timestamp: now.Format(TimestampFormat),
	}
	base := out.Subject + "_" + out.Timestamp

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return out, stage.Fail(stage.Render, fmt.Errorf("creating %s: %w", r.dir, err))
	}

	mdPath := filepath.Join(r.dir, base+".md")
	if err := os.WriteFile(mdPath, []byte(report), 0o644); err != nil {
		return out, stage.Fail(stage.Render, fmt.Errorf("writing markdown: %w", err))
	}
	out.MarkdownPath = mdPath
	log.Info("markdown written", zap.String("path", mdPath))

	if r.printer == nil {
		return out, nil
	}

	pdfPath := filepath.Join(r.dir, base+".pdf")
	if err := r.writePDF(ctx, report, pdfPath, now); err != nil {
		log.Warn("pdf failed, markdown kept", zap.String("markdown", mdPath), zap.Error(err))
		return out, stage.Fail(stage.Render, err)
	}
	out.PDFPath = pdfPath
	log.Info("pdf written", zap.String("path", pdfPath))
	return out, nil
}

// RegeneratePDF renders an existing, possibly hand-edited, Markdown report
// to PDF in the output directory. outputName defaults to the Markdown base
// name; ".pdf" is appended when missing.
func (r *Renderer) RegeneratePDF(ctx context.Context, markdownPath, outputName string) (string, error) {
	data, err := os.ReadFile(markdownPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", stage.Fail(stage.Render, fmt.Errorf("markdown file not found: %w", err))
		}
		return "", stage.Fail(stage.Render, fmt.Errorf("reading markdown: %w", err))
	}
	if r.printer == nil {
		return "", stage.Fail(stage.Render, ErrNoPrinter)
	}

	if outputName == "" {
		outputName = strings.TrimSuffix(filepath.Base(markdownPath), filepath.Ext(markdownPath))
	}
	if !strings.HasSuffix(outputName, ".pdf") {
		outputName += ".pdf"
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", stage.Fail(stage.Render, fmt.Errorf("creating %s: %w", r.dir, err))
	}

	pdfPath := filepath.Join(r.dir, outputName)
	if err := r.writePDF(ctx, string(data), pdfPath, r.now()); err != nil {
		return "", stage.Fail(stage.Render, err)
	}
	logging.From(ctx, r.logger).Info("pdf regenerated",
		zap.String("markdown", markdownPath), zap.String("path", pdfPath))
	return pdfPath, nil
}

func (r *Renderer) writePDF(ctx context.Context, report, path string, generated time.Time) error {
	doc, err := BuildHTML(report, generated)
	if err != nil {
		return err
	}
	pdf, err := r.printer.PrintPDF(ctx, doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
