package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/iselog/pkg/config"
	"github.com/ccollicutt/iselog/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an iselog configuration file without running analysis.

Checks:
  - YAML syntax
  - Output format and log settings
  - Export destinations (postgres_dsn scheme)
  - Webhook URLs and triggers
  - Log source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Log sources: %d pattern(s)\n", len(cfg.LogSources))
	fmt.Fprintf(w, "  Output:      %s\n", cfg.Output)
	fmt.Fprintf(w, "  Log level:   %s (%s)\n", cfg.Log.Level, cfg.Log.Encoding)
	fmt.Fprintf(w, "  Webhooks:    %d\n", len(cfg.Webhooks))

	exports := enabledExports(cfg.Export)
	if len(exports) > 0 {
		fmt.Fprintf(w, "\nExports:\n")
		for _, e := range exports {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	if len(cfg.LogSources) == 0 {
		fmt.Fprintf(w, "\nNo log sources configured; pass log files to analyze.\n")
		return nil
	}

	// Check if log sources exist (warnings only)
	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding log source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(w, "\nWarning: No files match log source patterns\n")
	} else {
		fmt.Fprintf(w, "\nLog files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}

func enabledExports(ec config.ExportConfig) []string {
	var out []string
	if ec.SQLite != "" {
		out = append(out, "sqlite: "+ec.SQLite)
	}
	if ec.PostgresDSN != "" {
		out = append(out, "postgres")
	}
	if ec.MetricsFile != "" {
		out = append(out, "metrics: "+ec.MetricsFile)
	}
	return out
}
