package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/iselog/pkg/output"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	ConfigFile string
	Output     string
	Out        string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [log-file...]",
		Short: "Extract fields without analysis",
		Long: `Extract structured fields from ISE authentication logs and print the
records without computing statistics.

Lines with no recognized field are skipped. Absent fields are omitted
from JSON objects and left empty in CSV rows.

Example:
  iselog parse /var/log/ise/*.log
  iselog parse -o csv --out records.csv ise.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "json", "Output format (json|csv)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write records to a file instead of stdout")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := commandContext(cmd)

	var write func(io.Writer) error
	switch opts.Output {
	case "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q (use json or csv)", opts.Output)
	}

	cfg, err := loadConfig(ctx, opts.ConfigFile, args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	_, records, stats, err := extractFiles(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("records extracted", zap.Int("records", stats.Records), zap.Int("skipped", stats.Skipped))

	if opts.Output == "csv" {
		write = func(w io.Writer) error { return output.WriteRecordsCSV(w, records) }
	} else {
		write = func(w io.Writer) error { return output.WriteRecordsJSON(w, records) }
	}

	if err := writeOutput(opts.Out, cmd.OutOrStdout(), write); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}
