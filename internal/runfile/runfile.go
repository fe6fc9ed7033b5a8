// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runfile saves a pipeline run to YAML so it can be reloaded and
// re-synthesized without re-running the searches.
package runfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-report/pkg/types"
)

// Ext is the file extension of a run record.
const Ext = ".run.yaml"

// Record is the on-disk representation of one run.
type Record struct {
	RunID    string               `yaml:"run_id"`
	Topic    string               `yaml:"topic"`
	Queries  []string             `yaml:"queries"`
	Results  []types.SearchResult `yaml:"results"`
	Failures []types.QueryFailure `yaml:"failures,omitempty"`
	Report   string               `yaml:"report,omitempty"`
	Outputs  Outputs              `yaml:"outputs,omitempty"`
	Summary  Summary              `yaml:"summary"`
}

// Outputs stores the files the renderer produced.
type Outputs struct {
	Markdown string `yaml:"markdown,omitempty"`
	PDF      string `yaml:"pdf,omitempty"`
}

// Summary stores run statistics and a timestamp.
type Summary struct {
	Queries   int       `yaml:"queries"`
	Results   int       `yaml:"results"`
	Failures  int       `yaml:"failures"`
	Timestamp time.Time `yaml:"timestamp"`
}

// FromState builds a record from a finished (or partially finished) run.
func FromState(st *types.ReportState, out Outputs, now time.Time) Record {
	return Record{
		RunID:    st.RunID,
		Topic:    st.Topic,
		Queries:  st.Queries,
		Results:  st.Results,
		Failures: st.Failures,
		Report:   st.Report,
		Outputs:  out,
		Summary: Summary{
			Queries:   len(st.Queries),
			Results:   len(st.Results),
			Failures:  len(st.Failures),
			Timestamp: now,
		},
	}
}

// State converts the record back into a report state. The report text is
// dropped so the state is ready for re-synthesis.
func (r *Record) State() *types.ReportState {
	return &types.ReportState{
		RunID:    r.RunID,
		Topic:    r.Topic,
		Queries:  r.Queries,
		Results:  r.Results,
		Failures: r.Failures,
	}
}

// PathFor returns the record path stored beside a Markdown report:
// reports/x_20250101_120000.md becomes reports/x_20250101_120000.run.yaml.
func PathFor(markdownPath string) string {
	return strings.TrimSuffix(markdownPath, filepath.Ext(markdownPath)) + Ext
}

// Write saves the record to path, creating the parent directory.
func Write(path string, r Record) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run record directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a previously saved run record.
func Read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run record: %w", err)
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing run record: %w", err)
	}
	if strings.TrimSpace(r.Topic) == "" {
		return nil, errors.New("run record has no topic")
	}
	return &r, nil
}
