// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-report/internal/stage"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// mockPrinter records the HTML it was asked to print.
type mockPrinter struct {
	html  string
	calls int
	err   error
}

func (m *mockPrinter) PrintPDF(_ context.Context, html string) ([]byte, error) {
	m.calls++
	m.html = html
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func TestRender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	p := &mockPrinter{}
	r := New(dir, p, WithClock(fixedClock))

	out, err := r.Render(context.Background(), sampleReport, "Quantum Error Correction")
	require.NoError(t, err)

	assert.Equal(t, "quantum_error_correction", out.Subject)
	assert.Equal(t, "20250301_120000", out.Timestamp)
	assert.Equal(t, filepath.Join(dir, "quantum_error_correction_20250301_120000.md"), out.MarkdownPath)
	assert.Equal(t, filepath.Join(dir, "quantum_error_correction_20250301_120000.pdf"), out.PDFPath)

	md, err := os.ReadFile(out.MarkdownPath)
	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(md))

	pdf, err := os.ReadFile(out.PDFPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(pdf))
	assert.Contains(t, p.html, "<h2>References</h2>")
}

func TestRenderSubjectFromHeading(t *testing.T) {
	r := New(t.TempDir(), nil, WithClock(fixedClock))
	out, err := r.Render(context.Background(), sampleReport, "")
	require.NoError(t, err)
	assert.Equal(t, "quantum_error_correction", out.Subject)
	assert.Empty(t, out.PDFPath)
	assert.FileExists(t, out.MarkdownPath)
}

func TestRenderPDFFailureKeepsMarkdown(t *testing.T) {
	dir := t.TempDir()
	cause := errors.New("chrome not found")
	r := New(dir, &mockPrinter{err: cause}, WithClock(fixedClock))

	out, err := r.Render(context.Background(), sampleReport, "topic")
	require.Error(t, err)
	assert.ErrorIs(t, err, stage.ErrRenderFailed)
	assert.ErrorIs(t, err, cause)

	assert.FileExists(t, out.MarkdownPath)
	assert.Empty(t, out.PDFPath)
	assert.NoFileExists(t, filepath.Join(dir, "topic_20250301_120000.pdf"))
}

func TestRenderMarkdownFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	p := &mockPrinter{}
	out, err := New(blocker, p, WithClock(fixedClock)).Render(context.Background(), sampleReport, "topic")
	assert.ErrorIs(t, err, stage.ErrRenderFailed)
	assert.Empty(t, out.MarkdownPath)
	assert.Equal(t, 0, p.calls)
}

func TestRegeneratePDF(t *testing.T) {
	src := filepath.Join(t.TempDir(), "edited_20250301_120000.md")
	require.NoError(t, os.WriteFile(src, []byte(sampleReport), 0o644))

	tests := []struct {
		name       string
		outputName string
		wantBase   string
	}{
		{"default name", "", "edited_20250301_120000.pdf"},
		{"explicit name", "final.pdf", "final.pdf"},
		{"extension appended", "final_v2", "final_v2.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			p := &mockPrinter{}
			path, err := New(dir, p, WithClock(fixedClock)).RegeneratePDF(context.Background(), src, tt.outputName)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.wantBase), path)
			assert.FileExists(t, path)
			assert.Contains(t, p.html, "<strong>leading</strong>")
		})
	}
}

func TestRegeneratePDFErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(dir, &mockPrinter{}).RegeneratePDF(context.Background(), filepath.Join(dir, "missing.md"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, stage.ErrRenderFailed)

	src := filepath.Join(dir, "r.md")
	require.NoError(t, os.WriteFile(src, []byte("body"), 0o644))
	_, err = New(dir, nil).RegeneratePDF(context.Background(), src, "")
	assert.ErrorIs(t, err, ErrNoPrinter)
}

// fakeRuntime is a container.Runtime that echoes a fixed PDF.
type fakeRuntime struct {
	hasImage bool
	image    string
	args     []string
	stdin    string
	out      string
}

func (f *fakeRuntime) Name() string                   { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool { return true }

func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if !f.hasImage {
		return errors.New("image " + image + " not found")
	}
	return nil
}

func (f *fakeRuntime) Run(_ context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.image = image
	f.args = args
	data, _ := io.ReadAll(stdin)
	f.stdin = string(data)
	_, err := stdout.Write([]byte(f.out))
	return err
}

func TestContainerPrinter(t *testing.T) {
	rt := &fakeRuntime{hasImage: true, out: "%PDF-1.7"}
	p, err := NewContainerPrinter(context.Background(), rt, "")
	require.NoError(t, err)

	pdf, err := p.PrintPDF(context.Background(), "<html>doc</html>")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(pdf))
	assert.Equal(t, DefaultContainerImage, rt.image)
	assert.Equal(t, []string{"-", "-"}, rt.args)
	assert.Equal(t, "<html>doc</html>", rt.stdin)
}

func TestContainerPrinterErrors(t *testing.T) {
	_, err := NewContainerPrinter(context.Background(), &fakeRuntime{}, "custom:1")
	assert.ErrorContains(t, err, "custom:1")

	p, err := NewContainerPrinter(context.Background(), &fakeRuntime{hasImage: true}, "custom:1")
	require.NoError(t, err)
	_, err = p.PrintPDF(context.Background(), "<html/>")
	assert.ErrorContains(t, err, "empty output")
}
