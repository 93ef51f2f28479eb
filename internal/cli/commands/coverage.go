package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/iselog/pkg/detector"
)

// CoverageOptions holds command-line options for the coverage command.
type CoverageOptions struct {
	Output     string
	SampleSize int
}

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand() *cobra.Command {
	opts := &CoverageOptions{}

	cmd := &cobra.Command{
		Use:   "coverage <log-file>",
		Short: "Report how well the field rules match a log file",
		Long: `Sample lines from a log file and report, for each extracted field, how
many lines it was found on. Also lists the message codes seen and whether
each one has a known description.

Use this to check that a log export is in a format iselog understands
before running a full analysis.

Example:
  iselog coverage /var/log/ise/auth.log
  iselog coverage --sample 1000 -o json auth.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")

	return cmd
}

func runCoverage(cmd *cobra.Command, args []string, opts *CoverageOptions) error {
	logFile := args[0]
	ctx := commandContext(cmd)

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))
	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("coverage failed: %w", err)
	}

	switch opts.Output {
	case "json":
		return outputCoverageJSON(cmd.OutOrStdout(), result, logFile)
	case "text":
		return outputCoverageText(cmd.OutOrStdout(), result, logFile)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputCoverageText(w io.Writer, result *detector.CoverageResult, logFile string) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	border := r.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Fprintln(w, title.Render("=== Field Coverage ==="))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %s\n", humanize.Comma(int64(result.SampledLines)))
	fmt.Fprintf(w, "Lines with fields: %s\n", humanize.Comma(int64(result.MatchedLines)))
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No ISE fields recognized.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: iselog expects key=value attributes such as User-Name=... and")
		fmt.Fprintln(w, "Calling-Station-ID=... as written by ISE syslog exports.")
		return nil
	}

	rows := make([][]string, 0, len(result.Fields))
	for _, fc := range result.Fields {
		rows = append(rows, []string{
			string(fc.Field),
			humanize.Comma(int64(fc.MatchCount)),
			fmt.Sprintf("%.1f%%", fc.Coverage*100),
			fc.SampleValue,
		})
	}
	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers("Field", "Lines", "Coverage", "Sample").
		Rows(rows...).
		String())

	if len(result.Codes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, title.Render("Message codes"))
		for _, cc := range result.Codes {
			fmt.Fprintf(w, "  %-6s %-40s %s\n", cc.Code, cc.Description, humanize.Comma(int64(cc.Count)))
		}
	}

	if result.MalformedMACs > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Note: %d MAC address value(s) could not be normalized and are kept as written.\n", result.MalformedMACs)
	}

	return nil
}

// CoverageJSON is the JSON representation of a coverage run.
type CoverageJSON struct {
	File          string          `json:"file"`
	SampledLines  int             `json:"sampled_lines"`
	MatchedLines  int             `json:"matched_lines"`
	MalformedMACs int             `json:"malformed_macs"`
	Fields        []FieldJSON     `json:"fields"`
	Codes         []CodeCountJSON `json:"codes"`
}

// FieldJSON is the JSON representation of one field's coverage.
type FieldJSON struct {
	Field       string  `json:"field"`
	MatchCount  int     `json:"match_count"`
	Coverage    float64 `json:"coverage"`
	SampleValue string  `json:"sample_value,omitempty"`
}

// CodeCountJSON is the JSON representation of one message code.
type CodeCountJSON struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Known       bool   `json:"known"`
	Count       int    `json:"count"`
}

func outputCoverageJSON(w io.Writer, result *detector.CoverageResult, logFile string) error {
	out := CoverageJSON{
		File:          logFile,
		SampledLines:  result.SampledLines,
		MatchedLines:  result.MatchedLines,
		MalformedMACs: result.MalformedMACs,
		Fields:        make([]FieldJSON, 0, len(result.Fields)),
		Codes:         make([]CodeCountJSON, 0, len(result.Codes)),
	}
	for _, fc := range result.Fields {
		out.Fields = append(out.Fields, FieldJSON{
			Field:       string(fc.Field),
			MatchCount:  fc.MatchCount,
			Coverage:    fc.Coverage,
			SampleValue: fc.SampleValue,
		})
	}
	for _, cc := range result.Codes {
		out.Codes = append(out.Codes, CodeCountJSON(cc))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
