// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-report CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-report/internal/logging"
	"github.com/pdiddy/research-report/internal/secrets"
	"github.com/pdiddy/research-report/internal/stage"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Store

	// logger is built from the log.* settings before any subcommand runs.
	logger = zap.NewNop()
)

// rootCmd is the base command for the research-report CLI.
var rootCmd = &cobra.Command{
	Use:   "research-report",
	Short: "Research a topic on the web and write a cited report",
	Long: `research-report turns a research topic into a cited report. A fast model
plans three to five search queries, one worker per query searches the web and
summarizes the best page, and a reasoning model writes the final report with
a numbered reference list. The report is saved as Markdown and, when a PDF
printer is available, as PDF.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = l.With(zap.String("command", cmd.Name()))

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-report.yaml or ~/.config/research-report/research-report.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default info)")
	pf.String("log-format", "", "log format: console or json (default console)")
	pf.String("output-dir", "", "directory for generated reports (default reports)")
	pf.String("printer", "", "PDF backend: chrome, container, or none (default chrome)")
	pf.String("metrics-file", "", "write run metrics in Prometheus text format to this path")

	bindFlags(rootCmd, map[string]string{
		"log.level":         "log-level",
		"log.format":        "log-format",
		"render.output_dir": "output-dir",
		"render.printer":    "printer",
		"metrics.textfile":  "metrics-file",
	}, true)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-report")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-report"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_REPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds flag names to viper keys. Unchanged flags fall through to
// the environment, the config file, and the defaults.
func bindFlags(cmd *cobra.Command, keys map[string]string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// errorMessage prefixes err with the stage it is attributed to.
func errorMessage(err error) string {
	if s, ok := stage.Of(err); ok {
		return fmt.Sprintf("error [%s]: %v", s, err)
	}
	return fmt.Sprintf("error: %v", err)
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}
