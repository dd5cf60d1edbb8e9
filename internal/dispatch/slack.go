// Package dispatch delivers rendered alert messages to Slack and email.
//
// Delivery is one attempt per message. Callers decide what a failure means;
// nothing here retries.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout    = 10 * time.Second
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
	errBodyReadLimit  = 1024
)

// SlackResult is the outcome of one webhook call that reached Slack.
type SlackResult struct {
	OK     bool
	Status int
	Body   string
}

type slackPayload struct {
	Text string `json:"text"`
}

// SlackClient posts messages to an incoming webhook.
type SlackClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlackClient returns a webhook client, or nil when webhookURL is empty.
func NewSlackClient(webhookURL string, timeout time.Duration) *SlackClient {
	if webhookURL == "" {
		return nil
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &SlackClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts text. A non-2xx answer is reported through SlackResult with the
// first KB of the body; only transport failures return an error.
func (c *SlackClient) Send(ctx context.Context, text string) (*SlackResult, error) {
	body, err := json.Marshal(slackPayload{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create slack request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack request: %w", err)
	}
	defer resp.Body.Close()

	res := &SlackResult{
		OK:     resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices,
		Status: resp.StatusCode,
	}

	if !res.OK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyReadLimit)) //nolint:errcheck // best effort diagnostics
		res.Body = string(respBody)
	}

	return res, nil
}
