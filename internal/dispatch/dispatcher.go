package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
)

// Dispatcher routes a notification to its channel client.
type Dispatcher struct {
	slack  *SlackClient
	email  *EmailClient
	logger *zerolog.Logger
}

// NewDispatcher creates a dispatcher. Either client may be nil.
func NewDispatcher(slack *SlackClient, email *EmailClient, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{slack: slack, email: email, logger: logger}
}

// Send delivers n. A missing Slack webhook is ErrNotConfigured, a missing
// email backend is ErrNotImplemented and a Slack rejection is ErrDispatchFailed.
func (d *Dispatcher) Send(ctx context.Context, n domain.Notification) error {
	switch n.Channel {
	case domain.ChannelSlack:
		return d.sendSlack(ctx, n)
	case domain.ChannelEmail:
		return d.sendEmail(n)
	default:
		return fmt.Errorf("channel %q: %w", n.Channel, apperrors.ErrInvalidInput)
	}
}

func (d *Dispatcher) sendSlack(ctx context.Context, n domain.Notification) error {
	if d.slack == nil {
		return fmt.Errorf("slack webhook: %w", apperrors.ErrNotConfigured)
	}

	res, err := d.slack.Send(ctx, n.Text)
	if err != nil {
		return err
	}

	if !res.OK {
		d.logger.Warn().Int("status", res.Status).Str("body", res.Body).Msg("slack webhook rejected message")
		return fmt.Errorf("slack status %d: %w", res.Status, apperrors.ErrDispatchFailed)
	}

	return nil
}

func (d *Dispatcher) sendEmail(n domain.Notification) error {
	if d.email == nil {
		return fmt.Errorf("email channel: %w", apperrors.ErrNotImplemented)
	}

	id, err := d.email.Send(n.To, n.Subject, n.HTML, n.Text)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrDispatchFailed, err)
	}

	d.logger.Debug().Str("email_id", id).Msg("alert email sent")

	return nil
}
