package extractor

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ccollicutt/iselog/pkg/parser"
)

// Stats summarizes an extraction run.
type Stats struct {
	// LinesRead is the number of lines consumed from the source.
	LinesRead int

	// Records is the number of records produced.
	Records int

	// Skipped is the number of lines that matched no field.
	Skipped int
}

// Extractor applies the field rules to log lines.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	specs  []FieldSpec
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Extractor with the default field rules.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		specs:  DefaultFieldSpecs(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract applies every field rule to line independently.
// Returns false when no field matched.
func (e *Extractor) Extract(line string) (Record, bool) {
	var rec Record
	matched := false

	for _, spec := range e.specs {
		m := spec.Pattern.FindStringSubmatch(line)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		rec.Set(spec.Field, m[1])
		matched = true
	}

	if !matched {
		return Record{}, false
	}

	if rec.MessageCode != "" {
		rec.MessageDescription = Describe(rec.MessageCode)
	}
	if rec.MACAddress != "" {
		rec.MACAddress = NormalizeMAC(rec.MACAddress)
	}

	return rec, true
}

// ExtractAll reads every line from source and returns the records in input
// order. Lines without any recognizable field, and lines longer than
// parser.MaxLineSize, are skipped.
func (e *Extractor) ExtractAll(ctx context.Context, source parser.LineSource) ([]Record, Stats, error) {
	var (
		records []Record
		stats   Stats
	)

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading log source: %w", err)
		}
		stats.LinesRead++

		if line.Truncated {
			e.logger.Debug("skipping oversized line",
				zap.String("source", line.Source),
				zap.Int("line", line.LineNum))
			stats.Skipped++
			continue
		}

		rec, ok := e.Extract(line.Text)
		if !ok {
			stats.Skipped++
			continue
		}
		if rec.MACAddress != "" && !IsCanonicalMAC(rec.MACAddress) {
			e.logger.Debug("mac address left as captured",
				zap.String("mac", rec.MACAddress),
				zap.String("source", line.Source),
				zap.Int("line", line.LineNum))
		}
		rec.Source = line.Source
		rec.LineNum = line.LineNum
		records = append(records, rec)
	}

	stats.Records = len(records)
	e.logger.Debug("extraction complete",
		zap.Int("lines", stats.LinesRead),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped))

	return records, stats, nil
}
