// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/render"
	"github.com/pdiddy/research-report/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render <markdown-file> [output-name]",
	Short: "Regenerate the PDF for an existing Markdown report",
	Long: `Render prints an existing, possibly hand-edited, Markdown report to PDF
using the same layout as report. The PDF is written to the output directory
under output-name, or under the Markdown file's base name when omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Render.Printer == types.PrinterNone {
		return render.ErrNoPrinter
	}

	ctx := logging.Into(cmd.Context(), logger)
	r, err := newRenderer(ctx, cfg.Render)
	if err != nil {
		return err
	}

	var outputName string
	if len(args) > 1 {
		outputName = args[1]
	}
	path, err := r.RegeneratePDF(ctx, args[0], outputName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "PDF: %s\n", path)
	return nil
}
