// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-report/internal/metrics"
	"github.com/pdiddy/research-report/internal/runfile"
	"github.com/pdiddy/research-report/internal/stage"
)

var resynthCmd = &cobra.Command{
	Use:   "resynth <run-file>",
	Short: "Rewrite a report from a saved run without searching again",
	Long: `Resynth loads a .run.yaml record saved by report, reruns synthesis over
its search results with the current reasoning model, and renders the new
report. A fresh record is saved beside the new Markdown file.`,
	Args: cobra.ExactArgs(1),
	RunE: runResynth,
}

func init() {
	rootCmd.AddCommand(resynthCmd)
}

func runResynth(cmd *cobra.Command, args []string) error {
	rec, err := runfile.Read(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	m := metrics.New()
	p, err := newPipeline(ctx, cfg, m, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	res, runErr := p.Resynthesize(ctx, rec.State())
	saveRecord(cfg.Render, res, time.Now())
	writeMetrics(m)

	if runErr != nil {
		if errors.Is(runErr, stage.ErrRenderFailed) && res != nil && res.State.Report != "" {
			fmt.Fprintln(cmd.OutOrStdout(), res.State.Report)
		}
		return runErr
	}
	printOutput(cmd.OutOrStdout(), res.Output)
	return nil
}
