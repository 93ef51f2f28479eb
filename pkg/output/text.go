package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/iselog/pkg/analyzer"
)

// timelineWidth is the length of the longest timeline bar.
const timelineWidth = 40

// TextFormatter formats reports as human-readable tables.
// Colors are only emitted when the writer is a terminal.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

type textStyles struct {
	title   lipgloss.Style
	section lipgloss.Style
	alert   lipgloss.Style
	faint   lipgloss.Style
	border  lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("201")),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		alert:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		faint:   r.NewStyle().Faint(true),
		border:  r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	res := report.Analysis
	_, err := fmt.Fprintf(w, "iselog: %s events, %s users, %s devices, success rate %s, %d suspicious finding(s)\n",
		humanize.Comma(int64(res.TotalEvents)),
		humanize.Comma(int64(res.UniqueUsers)),
		humanize.Comma(int64(res.UniqueDevices)),
		res.SuccessRate,
		len(res.SuspiciousActivity))
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	st := newTextStyles(w)
	res := report.Analysis
	var sb strings.Builder

	sb.WriteString(st.title.Render("ISE Log Analysis Summary"))
	sb.WriteString("\n")
	sb.WriteString(f.table(st, []string{"Metric", "Value"}, [][]string{
		{"Total Events", humanize.Comma(int64(res.TotalEvents))},
		{"Unique Users", humanize.Comma(int64(res.UniqueUsers))},
		{"Unique Devices", humanize.Comma(int64(res.UniqueDevices))},
		{"Success Rate", res.SuccessRate},
	}))
	sb.WriteString("\n")

	if len(res.AuthSummary) > 0 {
		rows := make([][]string, 0, len(res.AuthSummary))
		for _, status := range sortedKeys(res.AuthSummary) {
			rows = append(rows, []string{status, humanize.Comma(int64(res.AuthSummary[status]))})
		}
		sb.WriteString("\n" + st.section.Render("Authentication Summary") + "\n")
		sb.WriteString(f.table(st, []string{"Status", "Count"}, rows))
		sb.WriteString("\n")
	}

	if len(res.TopFailures) > 0 {
		rows := make([][]string, 0, len(res.TopFailures))
		for _, fc := range res.TopFailures {
			rows = append(rows, []string{fc.Reason, humanize.Comma(int64(fc.Count))})
		}
		sb.WriteString("\n" + st.section.Render("Top Failure Reasons") + "\n")
		sb.WriteString(f.table(st, []string{"Reason", "Count"}, rows))
		sb.WriteString("\n")
	}

	if res.HasFindings() {
		sb.WriteString("\n" + st.alert.Render("Suspicious Activity Detected") + "\n")
		byType := findingsByType(res.SuspiciousActivity)
		for _, ft := range []analyzer.FindingType{analyzer.FindingBruteForce, analyzer.FindingMACSpoofing} {
			for _, finding := range byType[ft] {
				sb.WriteString(formatFinding(finding))
			}
		}
	} else {
		sb.WriteString("\nNo suspicious activity detected\n")
	}

	if len(res.Timeline) > 0 {
		sb.WriteString("\n" + st.section.Render("Hourly Timeline") + "\n")
		sb.WriteString(formatTimeline(res.Timeline))
	}

	if f.opts.Verbose {
		md := report.Metadata
		sb.WriteString("\n")
		sb.WriteString(st.faint.Render(fmt.Sprintf("Run %s: %s lines read, %s skipped, %s",
			md.RunID,
			humanize.Comma(int64(md.LinesRead)),
			humanize.Comma(int64(md.LinesSkipped)),
			md.Duration.Round(1e6))))
		sb.WriteString("\n")
		for _, src := range md.Sources {
			sb.WriteString(st.faint.Render("  - "+src) + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *TextFormatter) table(st textStyles, headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers(headers...).
		Rows(rows...).
		String()
}

func formatFinding(finding analyzer.Finding) string {
	switch finding.Type {
	case analyzer.FindingBruteForce:
		return fmt.Sprintf("  - %s: user=%s failed_attempts=%d\n", finding.Type.Label(), finding.Subject, finding.Count)
	case analyzer.FindingMACSpoofing:
		return fmt.Sprintf("  - %s: mac=%s user_count=%d\n", finding.Type.Label(), finding.Subject, finding.Count)
	default:
		return fmt.Sprintf("  - %s: %s (%d)\n", finding.Type.Label(), finding.Subject, finding.Count)
	}
}

func formatTimeline(timeline map[int]int) string {
	peak := 0
	for _, n := range timeline {
		if n > peak {
			peak = n
		}
	}

	var sb strings.Builder
	for _, hour := range sortedHours(timeline) {
		n := timeline[hour]
		bar := n * timelineWidth / peak
		if bar == 0 {
			bar = 1
		}
		fmt.Fprintf(&sb, "  %02d:00 %s %s\n", hour, strings.Repeat("#", bar), strconv.Itoa(n))
	}
	return sb.String()
}
