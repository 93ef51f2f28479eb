package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ccollicutt/iselog/pkg/analyzer"
	"github.com/ccollicutt/iselog/pkg/output"
)

func newTestReport() *output.Report {
	return &output.Report{
		Analysis: &analyzer.Result{
			TotalEvents:   8,
			UniqueUsers:   2,
			UniqueDevices: 1,
			AuthSummary:   map[string]int{"PASSED": 2, "FAILED": 6},
			SuccessRate:   "25.00%",
			TopFailures:   []analyzer.FailureCount{{Reason: "Wrong password", Count: 6}},
			SuspiciousActivity: []analyzer.Finding{
				{Type: analyzer.FindingBruteForce, Subject: "alice", Count: 6},
			},
			Timeline: map[int]int{13: 8},
		},
		Metadata: output.Metadata{
			RunID:      "run-42",
			Sources:    []string{"ise.log"},
			AnalyzedAt: time.Now(),
			Duration:   time.Second,
		},
	}
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedUserAgent = r.Header.Get("User-Agent")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if !resp.Success() {
		t.Fatalf("expected success, got error: %v", resp.Error)
	}
	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}
	if receivedUserAgent != "iselog-webhook" {
		t.Errorf("expected User-Agent iselog-webhook, got %s", receivedUserAgent)
	}

	var n Notification
	if err := json.Unmarshal(receivedBody, &n); err != nil {
		t.Fatalf("failed to parse payload: %v", err)
	}
	if n.Event != EventAnalysisCompleted {
		t.Errorf("Event = %q", n.Event)
	}
	if n.RunID != "run-42" || n.TotalEvents != 8 || n.SuccessRate != "25.00%" {
		t.Errorf("unexpected summary: %+v", n)
	}
	if len(n.Findings) != 1 || n.Findings[0].Subject != "alice" {
		t.Errorf("Findings = %+v", n.Findings)
	}
	if n.Report == nil || n.Report.Analysis.Timeline[13] != 8 {
		t.Error("payload should embed the full report")
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:   server.URL,
		Token: "secret-token",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if receivedAuth != "Bearer secret-token" {
		t.Errorf("expected 'Bearer secret-token', got %q", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	client := NewClient(WithLogger(zap.New(core)))
	resp := client.Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if resp.Success() {
		t.Error("expected failure for 500 response")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
	if resp.Error == nil || !strings.Contains(resp.Error.Error(), "500") {
		t.Errorf("expected status error, got %v", resp.Error)
	}
	if logs.FilterMessage("webhook delivery failed").Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected timeout failure")
	}
	if resp.Error == nil {
		t.Error("expected error on timeout")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL: "://invalid",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}
	if resp.Error == nil || !strings.Contains(resp.Error.Error(), "failed to create request") {
		t.Errorf("unexpected error: %v", resp.Error)
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: url})

	if resp.Success() {
		t.Error("expected failure for closed server")
	}
	if resp.Error == nil || !strings.Contains(resp.Error.Error(), "request failed") {
		t.Errorf("unexpected error: %v", resp.Error)
	}
}

func TestClient_Options(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	hc := &http.Client{Timeout: time.Second}
	client := NewClient(WithHTTPClient(hc), WithUserAgent("custom/1.0"))
	if client.httpClient != hc {
		t.Error("WithHTTPClient not applied")
	}

	resp := client.Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})
	if !resp.Success() {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if ua != "custom/1.0" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestNewNotification_NoFindings(t *testing.T) {
	report := newTestReport()
	report.Analysis.SuspiciousActivity = nil

	n := NewNotification(report)
	if n.Findings == nil || len(n.Findings) != 0 {
		t.Errorf("Findings = %#v, want empty slice", n.Findings)
	}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"findings":[]`) {
		t.Errorf("findings should serialize as []: %s", data)
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"299", Response{StatusCode: 299}, true},
		{"300", Response{StatusCode: 300}, false},
		{"400", Response{StatusCode: 400}, false},
		{"500", Response{StatusCode: 500}, false},
		{"error set", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.want {
				t.Errorf("Success() = %v, want %v", got, tt.want)
			}
		})
	}
}
