// Package config provides configuration loading and validation for iselog.
package config

import "time"

// Output formats accepted by the analyze command.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputCSV  = "csv"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// LogSources are file paths or glob patterns (** allowed) of ISE logs.
	LogSources []string `yaml:"log_sources,omitempty"`

	// Output is the report format: text, json or csv.
	Output string `yaml:"output,omitempty"`

	// Parallel computes the independent analyses concurrently.
	Parallel bool `yaml:"parallel,omitempty"`

	Log      LogConfig       `yaml:"log,omitempty"`
	Export   ExportConfig    `yaml:"export,omitempty"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Encoding is console or json.
	Encoding string `yaml:"encoding,omitempty"`
}

// ExportConfig names optional destinations for extracted records and
// analysis metrics. Empty values disable the export.
type ExportConfig struct {
	// SQLite is the path of a database file to write records to.
	SQLite string `yaml:"sqlite,omitempty"`

	// PostgresDSN is a postgres:// connection string to write records to.
	// ${VAR} and $VAR are expanded from the environment.
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`

	// MetricsFile is a Prometheus textfile collector output path.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnFindings fires only when suspicious activity is detected (default).
	WebhookTriggerOnFindings WebhookTrigger = "on_findings"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_findings" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
