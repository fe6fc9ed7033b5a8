// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/pdiddy/research-report/internal/container"
)

// Printer turns an HTML document into PDF bytes. Each backend implements
// this interface per the Strategy pattern.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// PrinterFunc adapts a function to the Printer interface.
type PrinterFunc func(ctx context.Context, html string) ([]byte, error)

// PrintPDF calls f.
func (f PrinterFunc) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	return f(ctx, html)
}

// A4 in inches, with 2 cm margins.
const (
	a4Width  = 8.27
	a4Height = 11.69
	margin   = 0.79
)

const footerTemplate = `<div style="width:100%;text-align:center;font-size:10px;color:#666;">Page <span class="pageNumber"></span></div>`

const defaultPrintTimeout = 60 * time.Second

// ChromePrinter prints with a headless Chrome or Chromium started per call.
type ChromePrinter struct {
	// ExecPath is an explicit browser binary. Empty lets chromedp search.
	ExecPath string

	// Timeout bounds one print, including browser start-up.
	Timeout time.Duration
}

// PrintPDF loads html into a blank page and prints it to A4.
func (c *ChromePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultPrintTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate("<span></span>").
				WithFooterTemplate(footerTemplate).
				Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("printing with chrome: %w", err)
	}
	return pdf, nil
}

// DefaultContainerImage reads HTML on stdin and writes PDF on stdout.
// Build it with `mage pdfImage`.
const DefaultContainerImage = "weasyprint:latest"

// ContainerPrinter pipes HTML through a container image. It depends on a
// container.Runtime (docker or podman) injected at construction time.
type ContainerPrinter struct {
	runtime container.Runtime
	image   string
	args    []string
}

// NewContainerPrinter verifies that image exists locally. An empty image
// uses DefaultContainerImage.
func NewContainerPrinter(ctx context.Context, rt container.Runtime, image string) (*ContainerPrinter, error) {
	if image == "" {
		image = DefaultContainerImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdf image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerPrinter{runtime: rt, image: image, args: []string{"-", "-"}}, nil
}

// PrintPDF runs the image with html on stdin.
func (p *ContainerPrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	var out bytes.Buffer
	if err := p.runtime.Run(ctx, p.image, p.args, strings.NewReader(html), &out); err != nil {
		return nil, fmt.Errorf("printing with %s: %w", p.image, err)
	}
	if out.Len() == 0 {
		return nil, errors.New("pdf container produced empty output")
	}
	return out.Bytes(), nil
}
