package output

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/ccollicutt/iselog/pkg/analyzer"
)

// CSVFormatter flattens a report into section,key,value rows.
type CSVFormatter struct {
	opts FormatOptions
}

// NewCSVFormatter creates a new CSV formatter with the given options.
func NewCSVFormatter(opts FormatOptions) *CSVFormatter {
	return &CSVFormatter{opts: opts}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string {
	return "csv"
}

// Format renders the report as CSV.
func (f *CSVFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	cw := csv.NewWriter(w)
	res := report.Analysis

	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "total_events", strconv.Itoa(res.TotalEvents)},
		{"summary", "unique_users", strconv.Itoa(res.UniqueUsers)},
		{"summary", "unique_devices", strconv.Itoa(res.UniqueDevices)},
		{"summary", "success_rate", res.SuccessRate},
		{"summary", "suspicious_findings", strconv.Itoa(len(res.SuspiciousActivity))},
	}

	if !f.opts.Quiet {
		for _, status := range sortedKeys(res.AuthSummary) {
			rows = append(rows, []string{"auth_summary", status, strconv.Itoa(res.AuthSummary[status])})
		}
		for _, fc := range res.TopFailures {
			rows = append(rows, []string{"top_failures", fc.Reason, strconv.Itoa(fc.Count)})
		}
		for _, finding := range res.SuspiciousActivity {
			rows = append(rows, []string{string(finding.Type), finding.Subject, strconv.Itoa(finding.Count)})
		}
		for _, hour := range sortedHours(res.Timeline) {
			rows = append(rows, []string{"timeline", strconv.Itoa(hour), strconv.Itoa(res.Timeline[hour])})
		}
	}

	if f.opts.Verbose {
		rows = append(rows,
			[]string{"metadata", "run_id", report.Metadata.RunID},
			[]string{"metadata", "lines_read", strconv.Itoa(report.Metadata.LinesRead)},
			[]string{"metadata", "lines_skipped", strconv.Itoa(report.Metadata.LinesSkipped)},
		)
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedHours(m map[int]int) []int {
	hours := make([]int, 0, len(m))
	for h := range m {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

// findingsByType splits findings while keeping their order.
func findingsByType(findings []analyzer.Finding) map[analyzer.FindingType][]analyzer.Finding {
	out := make(map[analyzer.FindingType][]analyzer.Finding)
	for _, f := range findings {
		out[f.Type] = append(out[f.Type], f)
	}
	return out
}
