package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ccollicutt/iselog/pkg/extractor"
)

var sampleLines = []string{
	"2024-01-15 13:45:00 host CISE_Failed_Attempts 5400 NOTICE Failed-Attempt: User-Name=alice, Calling-Station-ID=aa-bb-cc-dd-ee-ff, FailureReason=Wrong password, FAILED",
	"2024-01-15 13:46:00 host CISE_Passed_Authentications 5200 NOTICE Passed-Authentication: User-Name=bob, Calling-Station-ID=1122.3344.5566, Protocol=Radius, PASSED",
	"2024-01-15 13:47:00 host CISE_Failed_Attempts 5400 NOTICE Failed-Attempt: User-Name=carol, Calling-Station-ID=aa:bb:cc, FAILED",
	"2024-01-15 13:48:00 host CISE_Misc 99999 INFO something, User-Name=dave",
}

func TestDetector_DetectFromLines(t *testing.T) {
	d := New()
	result := d.DetectFromLines(sampleLines)

	if !result.HasMatch() {
		t.Fatal("Expected records to be extracted")
	}
	if result.SampledLines != 4 || result.MatchedLines != 4 {
		t.Errorf("SampledLines=%d MatchedLines=%d, want 4/4", result.SampledLines, result.MatchedLines)
	}
	if len(result.Fields) != len(extractor.AllFields()) {
		t.Fatalf("Fields has %d entries", len(result.Fields))
	}

	tests := []struct {
		field    extractor.Field
		count    int
		coverage float64
		sample   string
	}{
		{extractor.FieldTimestamp, 4, 1.0, "2024-01-15 13:45:00"},
		{extractor.FieldUsername, 4, 1.0, "alice"},
		{extractor.FieldMACAddress, 3, 0.75, "AA:BB:CC:DD:EE:FF"},
		{extractor.FieldAuthStatus, 3, 0.75, "FAILED"},
		{extractor.FieldFailureReason, 1, 0.25, "Wrong password"},
		{extractor.FieldAuthProtocol, 1, 0.25, "Radius"},
		{extractor.FieldNASIP, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			fc, ok := result.Field(tt.field)
			if !ok {
				t.Fatal("field missing from result")
			}
			if fc.MatchCount != tt.count {
				t.Errorf("MatchCount = %d, want %d", fc.MatchCount, tt.count)
			}
			if fc.Coverage != tt.coverage {
				t.Errorf("Coverage = %v, want %v", fc.Coverage, tt.coverage)
			}
			if fc.SampleValue != tt.sample {
				t.Errorf("SampleValue = %q, want %q", fc.SampleValue, tt.sample)
			}
		})
	}

	if result.MalformedMACs != 1 {
		t.Errorf("MalformedMACs = %d, want 1", result.MalformedMACs)
	}
}

func TestDetector_DetectFromLines_Codes(t *testing.T) {
	result := New().DetectFromLines(sampleLines)

	if len(result.Codes) != 3 {
		t.Fatalf("Codes = %+v, want 3 entries", result.Codes)
	}

	first := result.Codes[0]
	if first.Code != "5400" || first.Count != 2 || !first.Known || first.Description != "Authentication failed" {
		t.Errorf("Codes[0] = %+v", first)
	}
	// Equal counts keep first-seen order.
	if result.Codes[1].Code != "5200" || result.Codes[2].Code != "99999" {
		t.Errorf("tie order = %s, %s", result.Codes[1].Code, result.Codes[2].Code)
	}
	if result.Codes[2].Known || result.Codes[2].Description != extractor.UnknownDescription {
		t.Errorf("Codes[2] = %+v, want unknown", result.Codes[2])
	}
}

func TestDetector_DetectFromLines_NoMatch(t *testing.T) {
	result := New().DetectFromLines([]string{"nothing to see here", "still nothing"})

	if result.HasMatch() {
		t.Error("Expected no match")
	}
	if result.SampledLines != 2 {
		t.Errorf("SampledLines = %d, want 2", result.SampledLines)
	}
	if len(result.Missing()) != len(extractor.AllFields()) {
		t.Errorf("Missing() = %v, want all fields", result.Missing())
	}
}

func TestDetector_DetectFromLines_EmptyInput(t *testing.T) {
	result := New().DetectFromLines(nil)

	if result.HasMatch() {
		t.Error("Expected no match for empty input")
	}
	if result.SampledLines != 0 {
		t.Errorf("Expected 0 sampled lines, got %d", result.SampledLines)
	}
	if result.Codes == nil {
		t.Error("Codes should be non-nil")
	}
	for _, fc := range result.Fields {
		if fc.Coverage != 0 {
			t.Errorf("%s coverage = %v, want 0", fc.Field, fc.Coverage)
		}
	}
}

func TestDetector_DetectFromLines_SkipsComments(t *testing.T) {
	lines := []string{
		"# header comment",
		"",
		"   ",
		sampleLines[0],
	}

	result := New().DetectFromLines(lines)
	if result.SampledLines != 1 {
		t.Errorf("SampledLines = %d, want 1", result.SampledLines)
	}
	fc, _ := result.Field(extractor.FieldUsername)
	if fc.Coverage != 1.0 {
		t.Errorf("username coverage = %v, want 1.0", fc.Coverage)
	}
}

func TestDetector_WithSampleSize(t *testing.T) {
	d := New(WithSampleSize(50))
	if d.SampleSize() != 50 {
		t.Errorf("Expected sample size 50, got %d", d.SampleSize())
	}
}

func TestDetector_WithSampleSize_Invalid(t *testing.T) {
	d := New(WithSampleSize(-1))
	if d.SampleSize() != DefaultSampleSize {
		t.Errorf("Expected default sample size, got %d", d.SampleSize())
	}
}

func TestDetector_WithExtractor(t *testing.T) {
	e := extractor.New()
	d := New(WithExtractor(e), WithExtractor(nil))
	if d.extractor != e {
		t.Error("WithExtractor not applied")
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "ise.log")

	content := "# exported from ISE\n"
	for _, l := range sampleLines {
		content += l + "\n"
	}
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	result, err := New(WithSampleSize(2)).DetectFromFile(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}

	if result.SampledLines != 2 {
		t.Errorf("SampledLines = %d, want 2", result.SampledLines)
	}
	fc, _ := result.Field(extractor.FieldUsername)
	if fc.SampleValue != "alice" {
		t.Errorf("username sample = %q, want alice", fc.SampleValue)
	}
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	_, err := New().DetectFromFile(context.Background(), "/nonexistent/file.log")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestDetector_DetectFromFile_Cancelled(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "ise.log")
	if err := os.WriteFile(tmpFile, []byte(sampleLines[0]+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().DetectFromFile(ctx, tmpFile); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
