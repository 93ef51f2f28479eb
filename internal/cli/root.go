// Package cli provides the command-line interface for iselog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/iselog/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(NewRootCommand(), os.Args[1:])
}

func run(rootCmd *cobra.Command, args []string) int {
	commands.ExitCode = 0
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "iselog",
		Short: "Analyze Cisco ISE authentication logs",
		Long: `iselog extracts structured fields from Cisco ISE authentication logs and
reports security statistics.

It reports:
  - Event, user and device counts
  - Authentication outcomes and success rate
  - Top failure reasons
  - Suspicious activity (brute force, MAC spoofing)
  - Events per hour of day

Records can also be exported to SQLite or PostgreSQL, written as Prometheus
textfile metrics, or posted to webhooks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(commands.LogLevelFlag, "warn", "Diagnostic log level (debug|info|warn|error)")

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewCoverageCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
