package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/boardflow/boardflow-api/internal/config"
	"github.com/boardflow/boardflow-api/internal/domain"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// TelegramSender delivers notifications through the Telegram Bot API.
type TelegramSender struct {
	cfg     config.TelegramConfig
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewTelegramSender creates a Telegram sender from the bot settings.
func NewTelegramSender(cfg config.TelegramConfig, logger *slog.Logger) *TelegramSender {
	if logger == nil {
		logger = slog.Default()
	}

	return &TelegramSender{
		cfg:     cfg,
		baseURL: defaultTelegramBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With(slog.String("component", "telegram_sender")),
	}
}

// SetBaseURL overrides the Bot API endpoint. Tests point it at a local
// server.
func (s *TelegramSender) SetBaseURL(url string) {
	s.baseURL = url
}

// Channel implements Sender.Channel
func (s *TelegramSender) Channel() domain.Channel {
	return domain.ChannelTelegram
}

// sendMessageRequest is the payload for the Bot API sendMessage method.
type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send implements Sender.Send
func (s *TelegramSender) Send(ctx context.Context, recipient *domain.User, msg Message) error {
	if !s.cfg.Configured() {
		return ErrChannelNotConfigured
	}

	if recipient.TelegramChatID == "" {
		return ErrNoContact
	}

	text := msg.Body
	if msg.Subject != "" {
		text = msg.Subject + "\n" + text
	}
	if msg.Link != "" {
		text = text + "\n" + msg.Link
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID: recipient.TelegramChatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.cfg.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// The Bot API explains failures in the response body.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error("telegram API rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("recipient_id", recipient.ID.String()))
		return fmt.Errorf("telegram API error: %s: %s", resp.Status, string(detail))
	}

	s.logger.Debug("telegram message sent",
		slog.String("recipient_id", recipient.ID.String()))
	return nil
}

var _ Sender = (*TelegramSender)(nil)
