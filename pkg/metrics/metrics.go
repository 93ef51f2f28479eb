// Package metrics exposes analysis results as Prometheus gauges and writes
// them in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccollicutt/iselog/pkg/analyzer"
	"github.com/ccollicutt/iselog/pkg/extractor"
)

// Namespace prefixes every metric name.
const Namespace = "iselog"

// Exporter holds the gauges for a single analysis run.
type Exporter struct {
	registry *prometheus.Registry

	linesRead     prometheus.Gauge
	linesSkipped  prometheus.Gauge
	events        prometheus.Gauge
	uniqueUsers   prometheus.Gauge
	uniqueDevices prometheus.Gauge
	successRatio  prometheus.Gauge
	authStatus    *prometheus.GaugeVec
	findings      *prometheus.GaugeVec
	eventsByHour  *prometheus.GaugeVec
	lastRun       prometheus.Gauge
}

// NewExporter creates an exporter with its own registry.
func NewExporter() *Exporter {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: Namespace, Name: name, Help: help})
	}
	e := &Exporter{
		registry:      prometheus.NewRegistry(),
		linesRead:     gauge("lines_read", "Input lines read in the last run."),
		linesSkipped:  gauge("lines_skipped", "Input lines with no recognized field in the last run."),
		events:        gauge("events_total", "Records extracted in the last run."),
		uniqueUsers:   gauge("unique_users", "Distinct usernames in the last run."),
		uniqueDevices: gauge("unique_devices", "Distinct MAC addresses in the last run."),
		successRatio:  gauge("success_ratio", "Share of PASSED among records with a status, 0 to 1."),
		lastRun:       gauge("last_run_timestamp_seconds", "Unix time the last run completed."),
		authStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "auth_status", Help: "Records per authentication status.",
		}, []string{"status"}),
		findings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "suspicious_findings", Help: "Suspicious findings per type.",
		}, []string{"type"}),
		eventsByHour: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "events_by_hour", Help: "Records per hour of day.",
		}, []string{"hour"}),
	}

	e.registry.MustRegister(
		e.linesRead, e.linesSkipped, e.events, e.uniqueUsers, e.uniqueDevices,
		e.successRatio, e.lastRun, e.authStatus, e.findings, e.eventsByHour,
	)
	return e
}

// Registry returns the exporter's registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe sets every gauge from a result and its extraction stats.
// completedAt is a Unix timestamp in seconds.
func (e *Exporter) Observe(res *analyzer.Result, stats extractor.Stats, completedAt float64) {
	e.linesRead.Set(float64(stats.LinesRead))
	e.linesSkipped.Set(float64(stats.Skipped))
	e.events.Set(float64(res.TotalEvents))
	e.uniqueUsers.Set(float64(res.UniqueUsers))
	e.uniqueDevices.Set(float64(res.UniqueDevices))
	e.successRatio.Set(successRatio(res.AuthSummary))
	e.lastRun.Set(completedAt)

	e.authStatus.Reset()
	for status, n := range res.AuthSummary {
		e.authStatus.WithLabelValues(status).Set(float64(n))
	}

	e.findings.Reset()
	for _, ft := range []analyzer.FindingType{analyzer.FindingBruteForce, analyzer.FindingMACSpoofing} {
		e.findings.WithLabelValues(string(ft)).Set(float64(len(res.FindingsOfType(ft))))
	}

	e.eventsByHour.Reset()
	for hour, n := range res.Timeline {
		e.eventsByHour.WithLabelValues(fmt.Sprintf("%02d", hour)).Set(float64(n))
	}
}

// WriteTextfile atomically writes the registry to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// successRatio is the numeric form of analyzer.SuccessRate.
func successRatio(summary map[string]int) float64 {
	total := 0
	for _, n := range summary {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(summary[extractor.StatusPassed]) / float64(total)
}
