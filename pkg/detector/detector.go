// Package detector samples ISE log files and reports how well the field
// rules cover them.
package detector

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/ccollicutt/iselog/pkg/extractor"
	"github.com/ccollicutt/iselog/pkg/parser"
)

// DefaultSampleSize is the number of lines sampled when no option is given.
const DefaultSampleSize = 100

// CoverageResult holds the result of sampling a log file.
type CoverageResult struct {
	Fields        []FieldCoverage // One entry per field, in canonical order
	Codes         []CodeCount     // Message codes seen, most frequent first
	SampledLines  int             // Number of lines sampled
	MatchedLines  int             // Lines that produced a record
	MalformedMACs int             // MAC values that could not be normalized
}

// FieldCoverage reports how often one field rule matched.
type FieldCoverage struct {
	Field       extractor.Field
	MatchCount  int
	Coverage    float64 // 0.0 to 1.0 of sampled lines
	SampleValue string  // First value seen
}

// CodeCount is the frequency of one message code in the sample.
type CodeCount struct {
	Code        string
	Description string
	Known       bool
	Count       int
}

// Detector samples log lines and runs them through an extractor.
type Detector struct {
	extractor  *extractor.Extractor
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *extractor.Extractor) Option {
	return func(d *Detector) {
		if e != nil {
			d.extractor = e
		}
	}
}

// New creates a new Detector with the default field rules.
func New(opts ...Option) *Detector {
	d := &Detector{
		extractor:  extractor.New(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SampleSize returns the configured number of lines to sample.
func (d *Detector) SampleSize() int {
	return d.sampleSize
}

// DetectFromFile samples a log file and reports field coverage.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*CoverageResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines reports field coverage for a slice of log lines.
// Blank lines and lines starting with # are ignored.
func (d *Detector) DetectFromLines(lines []string) *CoverageResult {
	fields := extractor.AllFields()
	result := &CoverageResult{
		Fields: make([]FieldCoverage, len(fields)),
		Codes:  []CodeCount{},
	}
	for i, f := range fields {
		result.Fields[i].Field = f
	}

	codes := make(map[string]*CodeCount)
	var codeOrder []string

	for _, line := range lines {
		if skipLine(line) {
			continue
		}
		result.SampledLines++

		rec, ok := d.extractor.Extract(line)
		if !ok {
			continue
		}
		result.MatchedLines++

		for i, f := range fields {
			v, present := rec.Get(f)
			if !present {
				continue
			}
			fc := &result.Fields[i]
			fc.MatchCount++
			if fc.SampleValue == "" {
				fc.SampleValue = v
			}
		}

		if rec.MACAddress != "" && !extractor.IsCanonicalMAC(rec.MACAddress) {
			result.MalformedMACs++
		}

		if rec.MessageCode != "" {
			cc, seen := codes[rec.MessageCode]
			if !seen {
				cc = &CodeCount{
					Code:        rec.MessageCode,
					Description: rec.MessageDescription,
					Known:       rec.MessageDescription != extractor.UnknownDescription,
				}
				codes[rec.MessageCode] = cc
				codeOrder = append(codeOrder, rec.MessageCode)
			}
			cc.Count++
		}
	}

	if result.SampledLines > 0 {
		for i := range result.Fields {
			result.Fields[i].Coverage = float64(result.Fields[i].MatchCount) / float64(result.SampledLines)
		}
	}

	for _, code := range codeOrder {
		result.Codes = append(result.Codes, *codes[code])
	}
	sort.SliceStable(result.Codes, func(i, j int) bool {
		return result.Codes[i].Count > result.Codes[j].Count
	})

	return result
}

// sampleFile reads up to sampleSize non-blank, non-comment lines from a file.
// Uses simple head sampling for efficiency.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	src := parser.NewFileSource([]string{path})
	defer src.Close()

	var lines []string
	for len(lines) < d.sampleSize {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !skipLine(line.Text) {
			lines = append(lines, line.Text)
		}
	}
	return lines, nil
}

func skipLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// HasMatch returns true if at least one sampled line produced a record.
func (r *CoverageResult) HasMatch() bool {
	return r.MatchedLines > 0
}

// Missing returns the fields that never matched in the sample.
func (r *CoverageResult) Missing() []extractor.Field {
	var missing []extractor.Field
	for _, fc := range r.Fields {
		if fc.MatchCount == 0 {
			missing = append(missing, fc.Field)
		}
	}
	return missing
}

// Field returns the coverage entry for f.
func (r *CoverageResult) Field(f extractor.Field) (FieldCoverage, bool) {
	for _, fc := range r.Fields {
		if fc.Field == f {
			return fc, true
		}
	}
	return FieldCoverage{}, false
}
