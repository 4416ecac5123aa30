package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/mail.v2"

	"github.com/boardflow/boardflow-api/internal/config"
	"github.com/boardflow/boardflow-api/internal/domain"
)

// EmailSender delivers notifications over SMTP.
type EmailSender struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

// NewEmailSender creates an email sender from the SMTP settings.
func NewEmailSender(cfg config.SMTPConfig, logger *slog.Logger) *EmailSender {
	if logger == nil {
		logger = slog.Default()
	}

	return &EmailSender{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "email_sender")),
	}
}

// Channel implements Sender.Channel
func (s *EmailSender) Channel() domain.Channel {
	return domain.ChannelEmail
}

// Send implements Sender.Send
// DialAndSend has no context plumbing, so cancellation is checked before
// dialing; the dial itself is bounded by the SMTP client's own timeouts.
func (s *EmailSender) Send(ctx context.Context, recipient *domain.User, msg Message) error {
	if !s.cfg.Configured() {
		return ErrChannelNotConfigured
	}

	if recipient.Email == "" {
		return ErrNoContact
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	body := msg.Body
	if msg.Link != "" {
		body = body + "\n\n" + msg.Link
	}

	message := mail.NewMessage()
	message.SetHeader("From", s.cfg.From)
	message.SetHeader("To", recipient.Email)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", body)

	dialer := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := dialer.DialAndSend(message); err != nil {
		s.logger.Error("failed to send email",
			slog.String("error", err.Error()),
			slog.String("recipient_id", recipient.ID.String()))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("email sent",
		slog.String("recipient_id", recipient.ID.String()))
	return nil
}

var _ Sender = (*EmailSender)(nil)
