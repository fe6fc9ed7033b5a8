// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan [topic]",
	Short: "Print the search queries planned for a topic",
	Long: `Plan runs only the planning stage: the fast model turns the topic into
three to five search queries, which are printed in order. Nothing is searched
and no files are written.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().Bool("json", false, "output queries as a JSON array")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	topic, err := readTopic(cmd.InOrStdin(), cmd.ErrOrStderr(), args)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fast, err := newModel(cfg.Model, cfg.Model.Fast)
	if err != nil {
		return err
	}

	ctx := logging.Into(cmd.Context(), logger)
	queries, err := plan.New(fast, logger).Plan(ctx, topic)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(queries)
	}
	for i, q := range queries {
		fmt.Fprintf(w, "%d. %s\n", i+1, q)
	}
	return nil
}
