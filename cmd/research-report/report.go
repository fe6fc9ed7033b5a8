// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-report/internal/metrics"
	"github.com/pdiddy/research-report/internal/pipeline"
	"github.com/pdiddy/research-report/internal/render"
	"github.com/pdiddy/research-report/internal/runfile"
	"github.com/pdiddy/research-report/internal/stage"
	"github.com/pdiddy/research-report/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [topic]",
	Short: "Research a topic and write a cited Markdown and PDF report",
	Long: `Report plans search queries for the topic, runs one search worker per
query concurrently, and synthesizes the summaries into a report with a
numbered reference list. Without a topic argument the topic is read from
standard input.

The run (queries, summaries, failures and report) is saved next to the
Markdown file as a .run.yaml record that resynth can reuse.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Int("max-concurrency", 0, "maximum concurrent search workers (0 runs all at once)")
	reportCmd.Flags().Duration("worker-timeout", 0, "deadline for one search worker (default 3m)")
	reportCmd.Flags().String("timeout-policy", "", "count a timed-out worker as: empty or fail (default fail)")
	reportCmd.Flags().String("failure-policy", "", "on worker failure: partial or abort (default partial)")
	reportCmd.Flags().String("extractor", "", "page content extractor: tavily or readability (default tavily)")
	reportCmd.Flags().Bool("no-record", false, "do not save the .run.yaml record")

	bindFlags(reportCmd, map[string]string{
		"dispatch.max_concurrency": "max-concurrency",
		"dispatch.worker_timeout":  "worker-timeout",
		"dispatch.timeout_policy":  "timeout-policy",
		"dispatch.failure_policy":  "failure-policy",
		"search.extractor":         "extractor",
	}, false)

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	topic, err := readTopic(cmd.InOrStdin(), cmd.ErrOrStderr(), args)
	if err != nil {
		return err
	}
	noRecord, _ := cmd.Flags().GetBool("no-record")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rec := metrics.New()
	p, err := newPipeline(ctx, cfg, rec, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	res, runErr := p.Run(ctx, topic)
	if !noRecord {
		saveRecord(cfg.Render, res, time.Now())
	}
	writeMetrics(rec)

	if runErr != nil {
		if errors.Is(runErr, stage.ErrRenderFailed) && res != nil && res.State.Report != "" {
			fmt.Fprintln(cmd.OutOrStdout(), res.State.Report)
		}
		return runErr
	}
	printOutput(cmd.OutOrStdout(), res.Output)
	return nil
}

// readTopic joins the positional arguments or, when there are none, reads
// one line from in after prompting on prompt.
func readTopic(in io.Reader, prompt io.Writer, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	fmt.Fprint(prompt, "Enter research topic: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading topic: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// recordPath places the run record beside the Markdown file. Runs that
// stopped before writing Markdown but got past search are still recorded
// in the output directory so they can be resynthesized.
func recordPath(cfg types.RenderConfig, res *pipeline.Result) string {
	if res == nil || res.State == nil {
		return ""
	}
	if res.Output.MarkdownPath != "" {
		return runfile.PathFor(res.Output.MarkdownPath)
	}
	if len(res.State.Results) == 0 {
		return ""
	}
	return filepath.Join(cfg.OutputDir, "run_"+res.State.RunID+runfile.Ext)
}

func saveRecord(cfg types.RenderConfig, res *pipeline.Result, now time.Time) {
	path := recordPath(cfg, res)
	if path == "" {
		return
	}
	out := runfile.Outputs{Markdown: res.Output.MarkdownPath, PDF: res.Output.PDFPath}
	if err := runfile.Write(path, runfile.FromState(res.State, out, now)); err != nil {
		logger.Warn("could not save run record", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("run record saved", zap.String("path", path))
}

func writeMetrics(rec *metrics.Recorder) {
	path := viper.GetString("metrics.textfile")
	if err := rec.WriteTextfile(path); err != nil {
		logger.Warn("could not write metrics", zap.String("path", path), zap.Error(err))
	}
}

func printOutput(w io.Writer, out render.Output) {
	fmt.Fprintf(w, "Markdown: %s\n", out.MarkdownPath)
	if out.PDFPath != "" {
		fmt.Fprintf(w, "PDF:      %s\n", out.PDFPath)
	}
}
