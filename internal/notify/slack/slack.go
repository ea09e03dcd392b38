// Package slack escalates critical-level intakes to the charge-nurse
// channel via an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/triagedesk/internal/triage"
)

const httpTimeout = 10 * time.Second

// Notifier posts intake escalations to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, CriticalIntake
// is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// CriticalIntake posts a critical-level intake to the configured webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) CriticalIntake(ctx context.Context, in *triage.Intake) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(in)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(in *triage.Intake) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(in),
			{"type": "divider"},
			fieldsBlock(in),
			{"type": "divider"},
			contextBlock(in),
		},
	}
}

func headerBlock(in *triage.Intake) map[string]any {
	text := fmt.Sprintf("\U0001f534 Critical intake: %s", in.Patient.FullName())

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(in *triage.Intake) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Level:* %s", in.Level.Name),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Max wait:* %s", in.Level.MaxWait),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Temp:* %.1f", in.Vitals.Temperature.Value()),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*HR:* %.0f", in.Vitals.HeartRate.Value()),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*RR:* %.0f", in.Vitals.RespiratoryRate.Value()),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*BP:* %.0f/%.0f", in.Vitals.BloodPressure.Systolic(), in.Vitals.BloodPressure.Diastolic()),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func contextBlock(in *triage.Intake) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("triagedesk • intake %s • %s", in.ID, in.RegisteredAt.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}
