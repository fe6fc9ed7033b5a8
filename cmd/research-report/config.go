// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-report/internal/render"
	"github.com/pdiddy/research-report/internal/search"
	"github.com/pdiddy/research-report/internal/secrets"
	"github.com/pdiddy/research-report/pkg/types"
)

const (
	defaultFastModel      = "gpt-4o-mini"
	defaultReasoningModel = "o3-mini"
	defaultModelTimeout   = 120 * time.Second
	defaultSearchTimeout  = 30 * time.Second
	defaultWorkerTimeout  = 3 * time.Minute
	defaultPrintTimeout   = 60 * time.Second
)

// setDefaults registers every configuration key so that config files and
// RESEARCH_REPORT_* variables can override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model.fast", defaultFastModel)
	v.SetDefault("model.reasoning", defaultReasoningModel)
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.timeout", defaultModelTimeout)

	v.SetDefault("search.api_key", "")
	v.SetDefault("search.depth", "basic")
	v.SetDefault("search.extractor", string(types.ExtractorTavily))
	v.SetDefault("search.max_content_chars", search.DefaultMaxContentChars)
	v.SetDefault("search.timeout", defaultSearchTimeout)
	v.SetDefault("search.user_agent", "research-report/"+version)

	v.SetDefault("dispatch.max_concurrency", 0)
	v.SetDefault("dispatch.worker_timeout", defaultWorkerTimeout)
	v.SetDefault("dispatch.timeout_policy", string(types.TimeoutAsFailure))
	v.SetDefault("dispatch.failure_policy", string(types.FailurePartial))

	v.SetDefault("render.output_dir", render.DefaultDir)
	v.SetDefault("render.printer", string(types.PrinterChrome))
	v.SetDefault("render.chrome_path", "")
	v.SetDefault("render.container_image", render.DefaultContainerImage)
	v.SetDefault("render.timeout", defaultPrintTimeout)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.textfile", "")
}

// loadConfig decodes the merged configuration and fills API keys from
// .secrets/ or the environment when the config leaves them empty.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = loadedSecrets.Get(secrets.OpenAIKey, secrets.OpenAIEnv)
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = loadedSecrets.Get(secrets.TavilyKey, secrets.TavilyEnv)
	}
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate rejects enum values and bounds the pipeline cannot act on.
func validate(cfg types.PipelineConfig) error {
	switch cfg.Dispatch.TimeoutPolicy {
	case types.TimeoutAsEmpty, types.TimeoutAsFailure:
	default:
		return fmt.Errorf("dispatch.timeout_policy must be %q or %q, got %q",
			types.TimeoutAsEmpty, types.TimeoutAsFailure, cfg.Dispatch.TimeoutPolicy)
	}
	switch cfg.Dispatch.FailurePolicy {
	case types.FailurePartial, types.FailureAbort:
	default:
		return fmt.Errorf("dispatch.failure_policy must be %q or %q, got %q",
			types.FailurePartial, types.FailureAbort, cfg.Dispatch.FailurePolicy)
	}
	switch cfg.Search.Extractor {
	case types.ExtractorTavily, types.ExtractorReadability:
	default:
		return fmt.Errorf("search.extractor must be %q or %q, got %q",
			types.ExtractorTavily, types.ExtractorReadability, cfg.Search.Extractor)
	}
	switch cfg.Render.Printer {
	case types.PrinterChrome, types.PrinterContainer, types.PrinterNone:
	default:
		return fmt.Errorf("render.printer must be %q, %q or %q, got %q",
			types.PrinterChrome, types.PrinterContainer, types.PrinterNone, cfg.Render.Printer)
	}
	if cfg.Dispatch.MaxConcurrency < 0 {
		return fmt.Errorf("dispatch.max_concurrency must not be negative, got %d", cfg.Dispatch.MaxConcurrency)
	}
	if cfg.Dispatch.WorkerTimeout < 0 {
		return fmt.Errorf("dispatch.worker_timeout must not be negative, got %s", cfg.Dispatch.WorkerTimeout)
	}
	return nil
}
