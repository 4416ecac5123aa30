// Package notify provides the outbound delivery channels for notification
// messages. Each channel implements the Sender interface; the notification
// service picks a sender by channel and never deals with transport details.
package notify

import (
	"context"
	"errors"

	"github.com/boardflow/boardflow-api/internal/domain"
)

// ErrChannelNotConfigured is returned when a send is attempted on a channel
// whose transport settings are missing.
var ErrChannelNotConfigured = errors.New("notification channel is not configured")

// ErrNoContact is returned when the recipient has no address for the channel.
var ErrNoContact = errors.New("recipient has no contact for channel")

// Message is the channel-independent content of a notification.
type Message struct {
	// Subject is used as the email subject line; the Telegram channel
	// prefixes the body with it.
	Subject string

	// Body is the human-readable notification text.
	Body string

	// Link, when set, points at the board or card the notification is about.
	Link string
}

// Sender delivers a message to one user over one channel.
type Sender interface {
	// Channel identifies which delivery channel this sender serves.
	Channel() domain.Channel

	// Send delivers the message to the given recipient. Implementations
	// return ErrNoContact when the recipient cannot be reached on this
	// channel.
	Send(ctx context.Context, recipient *domain.User, msg Message) error
}
