package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/iselog/pkg/detector"
)

func TestNewAnalyzeCommand(t *testing.T) {
	cmd := NewAnalyzeCommand()

	if cmd.Use != "analyze [log-file...]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{
		"config", "output", "out", "verbose", "quiet", "parallel",
		"sqlite", "postgres-dsn", "metrics-file",
		"webhook-url", "webhook-token", "webhook-trigger",
	}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewParseCommand(t *testing.T) {
	cmd := NewParseCommand()

	if cmd.Use != "parse [log-file...]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	for _, flag := range []string{"config", "output", "out"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if buf.String() != "iselog dev\n" {
		t.Errorf("version output = %q", buf.String())
	}
}

func TestRunValidate_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	logPath := writeISELog(t, tmpDir, false)

	cfg := `log_sources:
  - ` + logPath + `
output: json
export:
  sqlite: ` + filepath.Join(tmpDir, "iselog.db") + `
webhooks:
  - name: soc
    url: https://hooks.example.com/iselog
`
	if err := os.WriteFile(configPath, []byte(cfg), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Configuration valid!",
		"Output:      json",
		"Webhooks:    1",
		"sqlite: ",
		"Log files matched: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunValidate_NoSources(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("output: text\n"), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	t.Setenv("ISELOG_LOG_SOURCES", "")

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No log sources configured") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: content"), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	cmd.SetOut(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestRunValidate_BadWebhook(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "webhooks:\n  - url: ftp://example.com\n"
	if err := os.WriteFile(configPath, []byte(cfg), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	cmd.SetOut(io.Discard)

	err := cmd.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Errorf("Expected scheme error, got %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	cmd := NewValidateCommand()
	cmd.SetArgs([]string{"/nonexistent/config.yaml"})
	cmd.SetOut(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func runParseCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewParseCommand()
	cmd.SetArgs(args)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestRunParse_JSON(t *testing.T) {
	logPath := writeISELog(t, t.TempDir(), false)

	out, err := runParseCommand(t, logPath)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	if records[0]["username"] != "alice" || records[0]["mac_address"] != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("record 0 = %v", records[0])
	}
	if records[0]["message_description"] != "Authentication failed" {
		t.Errorf("message_description = %q", records[0]["message_description"])
	}
	if _, ok := records[2]["failure_reason"]; ok {
		t.Errorf("absent field should be omitted: %v", records[2])
	}
}

func TestRunParse_CSVToFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeISELog(t, tmpDir, false)
	outPath := filepath.Join(tmpDir, "records.csv")

	if _, err := runParseCommand(t, "-o", "csv", "--out", outPath, logPath); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("records file not written: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header + 4", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][len(rows[0])-1] != "message_description" {
		t.Errorf("header = %v", rows[0])
	}
}

func TestRunParse_InvalidFormat(t *testing.T) {
	if _, err := runParseCommand(t, "-o", "text", "ise.log"); err == nil {
		t.Error("Expected error for text format")
	}
}

func TestRunParse_MissingFile(t *testing.T) {
	if _, err := runParseCommand(t, "/nonexistent/ise.log"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func runCoverageCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCoverageCommand()
	cmd.SetArgs(args)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestRunCoverage_Text(t *testing.T) {
	logPath := writeISELog(t, t.TempDir(), true)

	out, err := runCoverageCommand(t, logPath)
	if err != nil {
		t.Fatalf("coverage failed: %v", err)
	}
	for _, want := range []string{
		"=== Field Coverage ===",
		"Lines sampled: 8",
		"Lines with fields: 7",
		"username",
		"87.5%",
		"Message codes",
		"Authentication failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCoverage_JSON(t *testing.T) {
	logPath := writeISELog(t, t.TempDir(), true)

	out, err := runCoverageCommand(t, "-o", "json", "-n", "3", logPath)
	if err != nil {
		t.Fatalf("coverage failed: %v", err)
	}

	var result CoverageJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.SampledLines != 3 {
		t.Errorf("SampledLines = %d, want 3", result.SampledLines)
	}
	if len(result.Fields) != 11 {
		t.Errorf("Fields = %d, want 11", len(result.Fields))
	}
	if len(result.Codes) != 1 || result.Codes[0].Code != "5400" || !result.Codes[0].Known {
		t.Errorf("Codes = %+v", result.Codes)
	}
}

func TestRunCoverage_NoMatch(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "other.log")
	if err := os.WriteFile(logPath, []byte("hello\nworld\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCoverageCommand(t, logPath)
	if err != nil {
		t.Fatalf("coverage failed: %v", err)
	}
	if !strings.Contains(out, "No ISE fields recognized.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunCoverage_NotFound(t *testing.T) {
	_, err := runCoverageCommand(t, "/nonexistent/ise.log")
	if err == nil || !strings.Contains(err.Error(), "log file not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestRunCoverage_InvalidFormat(t *testing.T) {
	logPath := writeISELog(t, t.TempDir(), false)
	if _, err := runCoverageCommand(t, "-o", "csv", logPath); err == nil {
		t.Error("Expected error for csv format")
	}
}

func TestOutputCoverageText_MalformedMACs(t *testing.T) {
	result := detector.New().DetectFromLines([]string{"User-Name=a, Calling-Station-ID=ab:cd"})

	var buf bytes.Buffer
	if err := outputCoverageText(&buf, result, "x.log"); err != nil {
		t.Fatalf("outputCoverageText() error = %v", err)
	}
	if !strings.Contains(buf.String(), "1 MAC address value(s) could not be normalized") {
		t.Errorf("missing malformed MAC note:\n%s", buf.String())
	}
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	err := writeOutput("", &stdout, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	if err != nil || stdout.String() != "hello" {
		t.Errorf("stdout write: %q, %v", stdout.String(), err)
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	boom := errors.New("boom")
	err = writeOutput(path, &stdout, func(w io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected write error to propagate, got %v", err)
	}

	err = writeOutput(filepath.Join(t.TempDir(), "missing", "out.txt"), &stdout, func(io.Writer) error { return nil })
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}
