package dispatch

import (
	"fmt"

	"github.com/resend/resend-go/v3"
)

const defaultFromName = "TPHub Alertas"

// EmailClient sends alert emails through Resend.
type EmailClient struct {
	client   *resend.Client
	from     string
	fromName string
}

// NewEmailClient returns a Resend client, or nil if not configured.
func NewEmailClient(apiKey, from, fromName string) *EmailClient {
	if apiKey == "" || from == "" {
		return nil
	}

	if fromName == "" {
		fromName = defaultFromName
	}

	return &EmailClient{
		client:   resend.NewClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

// Send delivers one email and returns the provider message id.
func (c *EmailClient) Send(to, subject, htmlBody, textBody string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.from),
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := c.client.Emails.Send(params)
	if err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}

	return sent.Id, nil
}
