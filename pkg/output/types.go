// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/iselog/pkg/analyzer"
	"github.com/ccollicutt/iselog/pkg/extractor"
)

// Report is the complete analysis output.
type Report struct {
	// Analysis holds the computed statistics and findings.
	Analysis *analyzer.Result `json:"analysis"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// RunID uniquely identifies this analysis run.
	RunID string `json:"run_id"`

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the log files that were analyzed.
	Sources []string `json:"sources"`

	// LinesRead is the number of input lines consumed.
	LinesRead int `json:"lines_read"`

	// LinesSkipped is the number of lines with no recognizable field.
	LinesSkipped int `json:"lines_skipped"`

	// AnalyzedAt is when the analysis completed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long extraction and analysis took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from an analysis result and extraction stats.
func NewReport(result *analyzer.Result, stats extractor.Stats, sources []string, configFile string, started time.Time) *Report {
	now := time.Now()
	return &Report{
		Analysis: result,
		Metadata: Metadata{
			RunID:        uuid.NewString(),
			ConfigFile:   configFile,
			Sources:      sources,
			LinesRead:    stats.LinesRead,
			LinesSkipped: stats.Skipped,
			AnalyzedAt:   now,
			Duration:     now.Sub(started),
		},
	}
}

// HasFindings returns true if any suspicious activity was detected.
func (r *Report) HasFindings() bool {
	return r.Analysis != nil && r.Analysis.HasFindings()
}
