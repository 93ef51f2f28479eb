// Package webhook posts analysis notifications to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/iselog/pkg/analyzer"
	"github.com/ccollicutt/iselog/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// EventAnalysisCompleted is the event name carried by every notification.
const EventAnalysisCompleted = "iselog.analysis.completed"

// maxResponseBody caps how much of the endpoint's reply is kept.
const maxResponseBody = 1024 * 1024

// Notification is the JSON body posted to a webhook.
type Notification struct {
	Event       string             `json:"event"`
	RunID       string             `json:"run_id"`
	SentAt      time.Time          `json:"sent_at"`
	TotalEvents int                `json:"total_events"`
	SuccessRate string             `json:"success_rate"`
	Findings    []analyzer.Finding `json:"findings"`
	Report      *output.Report     `json:"report"`
}

// NewNotification builds the payload for a report.
func NewNotification(report *output.Report) Notification {
	n := Notification{
		Event:    EventAnalysisCompleted,
		RunID:    report.Metadata.RunID,
		SentAt:   time.Now().UTC(),
		Findings: []analyzer.Finding{},
		Report:   report,
	}
	if report.Analysis != nil {
		n.TotalEvents = report.Analysis.TotalEvents
		n.SuccessRate = report.Analysis.SuccessRate
		if report.Analysis.SuspiciousActivity != nil {
			n.Findings = report.Analysis.SuspiciousActivity
		}
	}
	return n
}

// Client sends analysis reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new webhook client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  "iselog-webhook",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a notification for report to a webhook endpoint.
// Failures are reported in the Response, never returned.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := c.send(ctx, report, opts)
	resp.Duration = time.Since(start)

	if resp.Success() {
		c.logger.Debug("webhook delivered",
			zap.String("url", opts.URL),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", resp.Duration))
	} else {
		c.logger.Warn("webhook delivery failed",
			zap.String("url", opts.URL),
			zap.Int("status", resp.StatusCode),
			zap.Error(resp.Error))
	}
	return resp
}

func (c *Client) send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	resp := &Response{}

	payload, err := json.Marshal(NewNotification(report))
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal notification: %w", err)
		return resp
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		return resp
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		return resp
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp
}
