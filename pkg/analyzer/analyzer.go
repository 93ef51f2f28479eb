package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/iselog/pkg/extractor"
)

// Analyzer computes a Result from a fully materialized record sequence.
type Analyzer struct {
	parallel bool
	logger   *zap.Logger
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithParallel runs the independent sub-analyses concurrently.
func WithParallel(p bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.parallel = p
	}
}

// WithLogger sets the logger used for analysis diagnostics.
func WithLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Analyzer.
func New(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes statistics sequentially with default options.
func Analyze(records []extractor.Record) *Result {
	res, _ := New().Analyze(context.Background(), records)
	return res
}

// Analyze computes the aggregate statistics and findings for records.
// records is only read. The error is non-nil only when ctx is cancelled.
func (a *Analyzer) Analyze(ctx context.Context, records []extractor.Record) (*Result, error) {
	start := time.Now()
	res := &Result{TotalEvents: len(records)}

	steps := []func(){
		func() { res.UniqueUsers = CountDistinct(records, extractor.FieldUsername) },
		func() { res.UniqueDevices = CountDistinct(records, extractor.FieldMACAddress) },
		func() {
			res.AuthSummary = AuthSummary(records)
			res.SuccessRate = SuccessRate(res.AuthSummary)
		},
		func() { res.TopFailures = TopFailures(records, TopFailuresLimit) },
		func() { res.SuspiciousActivity = SuspiciousActivity(records) },
		func() { res.Timeline = Timeline(records) },
	}

	if a.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for _, step := range steps {
			step := step
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				step()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			step()
		}
	}

	a.logger.Debug("analysis complete",
		zap.Int("records", res.TotalEvents),
		zap.Int("findings", len(res.SuspiciousActivity)),
		zap.Bool("parallel", a.parallel),
		zap.Duration("duration", time.Since(start)))

	return res, nil
}
