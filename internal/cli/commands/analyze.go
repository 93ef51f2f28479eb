package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/iselog/pkg/analyzer"
	"github.com/ccollicutt/iselog/pkg/config"
	"github.com/ccollicutt/iselog/pkg/extractor"
	"github.com/ccollicutt/iselog/pkg/metrics"
	"github.com/ccollicutt/iselog/pkg/output"
	"github.com/ccollicutt/iselog/pkg/store"
	"github.com/ccollicutt/iselog/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigFile string
	Output     string
	Out        string
	Verbose    bool
	Quiet      bool
	Parallel   bool

	// Export options
	SQLite      string
	PostgresDSN string
	MetricsFile string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [log-file...]",
		Short: "Analyze ISE authentication logs",
		Long: `Extract fields from Cisco ISE authentication logs and report aggregate
statistics: event counts, authentication outcomes, top failure reasons,
suspicious activity and an hourly timeline.

Log files may be given as arguments (globs and ** allowed) or through
log_sources in the configuration file.

Detects:
  - Potential brute force (5 or more failures for one user)
  - Possible MAC spoofing (one MAC used by more than 2 users)

Exit codes:
  0 - No suspicious activity detected
  1 - Suspicious activity detected
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Output format (text|json|csv)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include run metadata in the report")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "Compute independent statistics concurrently")

	// Export flags
	cmd.Flags().StringVar(&opts.SQLite, "sqlite", "", "Export records and findings to a SQLite database file")
	cmd.Flags().StringVar(&opts.PostgresDSN, "postgres-dsn", "", "Export records and findings to PostgreSQL")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus textfile metrics")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnFindings), "When to fire webhook (on_findings|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	started := time.Now()
	ctx := commandContext(cmd)

	cfg, err := loadConfig(ctx, opts.ConfigFile, args)
	if err != nil {
		return err
	}
	if _, err := config.ParseWebhookTrigger(opts.WebhookTrigger); err != nil {
		return fmt.Errorf("invalid --webhook-trigger: %w", err)
	}
	applyAnalyzeFlags(cmd, cfg, opts)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger, err := newLogger(cmd, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	files, records, stats, err := extractFiles(ctx, cfg, logger)
	if err != nil {
		return err
	}

	a := analyzer.New(analyzer.WithParallel(cfg.Parallel), analyzer.WithLogger(logger))
	result, err := a.Analyze(ctx, records)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, stats, files, opts.ConfigFile, started)

	formatter, err := output.NewFormatter(cfg.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	err = writeOutput(opts.Out, cmd.OutOrStdout(), func(w io.Writer) error {
		return formatter.Format(ctx, report, w)
	})
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if err := exportReport(ctx, cfg.Export, records, stats, report, logger); err != nil {
		return err
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, cfg, opts, report, logger)

	if report.HasFindings() {
		ExitCode = 1
	}

	return nil
}

// applyAnalyzeFlags lets explicitly set flags override the config file.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, opts *AnalyzeOptions) {
	if cmd.Flags().Changed("output") || cfg.Output == "" {
		cfg.Output = opts.Output
	}
	if opts.Parallel {
		cfg.Parallel = true
	}
	if opts.SQLite != "" {
		cfg.Export.SQLite = opts.SQLite
	}
	if opts.PostgresDSN != "" {
		cfg.Export.PostgresDSN = opts.PostgresDSN
	}
	if opts.MetricsFile != "" {
		cfg.Export.MetricsFile = opts.MetricsFile
	}
}

// exportReport writes records and metrics to every configured destination.
func exportReport(ctx context.Context, ec config.ExportConfig, records []extractor.Record, stats extractor.Stats, report *output.Report, logger *zap.Logger) error {
	run := store.Run{
		ID:         report.Metadata.RunID,
		AnalyzedAt: report.Metadata.AnalyzedAt,
		Records:    records,
		Result:     report.Analysis,
	}

	if ec.SQLite != "" {
		s, err := store.OpenSQLite(ctx, ec.SQLite, store.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		err = s.WriteRun(ctx, run)
		_ = s.Close()
		if err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
	}

	if ec.PostgresDSN != "" {
		s, err := store.OpenPostgres(ctx, ec.PostgresDSN, store.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("postgres export: %w", err)
		}
		err = s.WriteRun(ctx, run)
		_ = s.Close()
		if err != nil {
			return fmt.Errorf("postgres export: %w", err)
		}
	}

	if ec.MetricsFile != "" {
		e := metrics.NewExporter()
		e.Observe(report.Analysis, stats, float64(report.Metadata.AnalyzedAt.Unix()))
		if err := e.WriteTextfile(ec.MetricsFile); err != nil {
			return err
		}
		logger.Info("metrics written", zap.String("path", ec.MetricsFile))
	}

	return nil
}

// sendWebhooks sends the report to all configured webhooks.
// Failures are logged but don't fail the analysis.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, report *output.Report, logger *zap.Logger) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient(webhook.WithLogger(logger))

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.HasFindings()) {
			continue
		}

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
		if resp.Success() {
			logger.Info("webhook sent", zap.String("webhook", name), zap.Int("status", resp.StatusCode))
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger, err := config.ParseWebhookTrigger(opts.WebhookTrigger)
		if err != nil {
			trigger = config.WebhookTriggerOnFindings
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and findings.
func shouldFireWebhook(trigger config.WebhookTrigger, hasFindings bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasFindings
	}
}
