package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/iselog/internal/logging"
	"github.com/ccollicutt/iselog/pkg/config"
	"github.com/ccollicutt/iselog/pkg/extractor"
	"github.com/ccollicutt/iselog/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// LogLevelFlag is the persistent flag that overrides the configured log level.
const LogLevelFlag = "log-level"

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig loads the config file (or defaults) and applies positional
// log sources, which replace any configured ones.
func loadConfig(ctx context.Context, path string, sources []string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if len(sources) > 0 {
		cfg.LogSources = sources
	}
	return cfg, nil
}

// newLogger builds the stderr logger, honouring --log-level when set.
func newLogger(cmd *cobra.Command, cfg config.LogConfig) (*zap.Logger, error) {
	if f := cmd.Flag(LogLevelFlag); f != nil && f.Changed {
		cfg.Level = f.Value.String()
	}
	logger, err := logging.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// extractFiles expands the configured sources and extracts every record.
func extractFiles(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]string, []extractor.Record, extractor.Stats, error) {
	if len(cfg.LogSources) == 0 {
		return nil, nil, extractor.Stats{}, fmt.Errorf("no log sources given (pass files or set log_sources): %w", parser.ErrNoFiles)
	}

	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		return nil, nil, extractor.Stats{}, fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, extractor.Stats{}, fmt.Errorf("no log files matched patterns %v: %w", cfg.LogSources, parser.ErrNoFiles)
	}
	logger.Debug("log files resolved", zap.Strings("files", files))

	source := parser.NewFileSource(files)
	defer source.Close()

	records, stats, err := extractor.New(extractor.WithLogger(logger)).ExtractAll(ctx, source)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("extracting records: %w", err)
	}
	return files, records, stats, nil
}

// writeOutput calls write with stdout, or with a newly created file when
// path is set.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}

	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()
	return write(f)
}
