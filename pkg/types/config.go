// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-report/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ModelConfig holds settings for the two generative model roles.
type ModelConfig struct {
	// Fast is the model used for query planning and per-page summaries
	// (e.g. "gpt-4o-mini").
	Fast string `json:"fast" yaml:"fast" mapstructure:"fast"`

	// Reasoning is the higher-capability model used for the final report
	// (e.g. "o3-mini").
	Reasoning string `json:"reasoning" yaml:"reasoning" mapstructure:"reasoning"`

	// BaseURL overrides the OpenAI-compatible API endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// Timeout bounds a single model call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ExtractorKind selects how page content is pulled for a search hit.
type ExtractorKind string

const (
	ExtractorTavily      ExtractorKind = "tavily"
	ExtractorReadability ExtractorKind = "readability"
)

// SearchConfig holds settings for the search workers.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the Tavily API key.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// Depth is Tavily's search_depth parameter: basic or advanced.
	Depth string `json:"depth" yaml:"depth" mapstructure:"depth"`

	// Extractor selects the page content extractor (default tavily).
	Extractor ExtractorKind `json:"extractor" yaml:"extractor" mapstructure:"extractor"`

	// MaxContentChars caps the extracted text handed to the summarizer
	// (default 32000, 0 uses the default).
	MaxContentChars int `json:"max_content_chars" yaml:"max_content_chars" mapstructure:"max_content_chars"`
}

// TimeoutPolicy decides how a worker that hits its deadline is counted.
type TimeoutPolicy string

const (
	// TimeoutAsEmpty treats an expired worker like a query with no content.
	TimeoutAsEmpty TimeoutPolicy = "empty"
	// TimeoutAsFailure reports an expired worker as a search failure.
	TimeoutAsFailure TimeoutPolicy = "fail"
)

// FailurePolicy decides whether worker failures abort the run.
type FailurePolicy string

const (
	// FailurePartial proceeds to synthesis with whatever succeeded.
	FailurePartial FailurePolicy = "partial"
	// FailureAbort fails the run once all workers finish if any failed.
	FailureAbort FailurePolicy = "abort"
)

// DispatchConfig holds settings for the fan-out stage.
type DispatchConfig struct {
	// MaxConcurrency bounds in-flight workers. Zero runs every query at once.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" mapstructure:"max_concurrency"`

	// WorkerTimeout bounds a single worker. Zero means no per-worker deadline.
	WorkerTimeout time.Duration `json:"worker_timeout" yaml:"worker_timeout" mapstructure:"worker_timeout"`

	// TimeoutPolicy is empty or fail (default fail).
	TimeoutPolicy TimeoutPolicy `json:"timeout_policy" yaml:"timeout_policy" mapstructure:"timeout_policy"`

	// FailurePolicy is partial or abort (default partial).
	FailurePolicy FailurePolicy `json:"failure_policy" yaml:"failure_policy" mapstructure:"failure_policy"`
}

// PrinterKind selects the HTML-to-PDF backend.
type PrinterKind string

const (
	PrinterChrome    PrinterKind = "chrome"
	PrinterContainer PrinterKind = "container"
	PrinterNone      PrinterKind = "none"
)

// RenderConfig holds settings for the renderer.
type RenderConfig struct {
	// OutputDir is the directory for generated reports (default "reports").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Printer selects the PDF backend: chrome, container, or none.
	Printer PrinterKind `json:"printer" yaml:"printer" mapstructure:"printer"`

	// ChromePath is an explicit Chrome/Chromium binary for the chrome printer.
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty" mapstructure:"chrome_path"`

	// ContainerImage is the image for the container printer. It must read
	// HTML on stdin and write PDF on stdout.
	ContainerImage string `json:"container_image,omitempty" yaml:"container_image,omitempty" mapstructure:"container_image"`

	// Timeout bounds a single PDF print.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// Textfile, when set, receives the run's metrics in Prometheus text format.
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty" mapstructure:"textfile"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Model    ModelConfig    `json:"model" yaml:"model" mapstructure:"model"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Dispatch DispatchConfig `json:"dispatch" yaml:"dispatch" mapstructure:"dispatch"`
	Render   RenderConfig   `json:"render" yaml:"render" mapstructure:"render"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}
