// Package linebot receives LINE webhooks and relays issued receipts back
// to the sender.
package linebot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
)

// ErrInvalidSignature is returned for webhook requests that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Messenger is the subset of the messaging API the bot uses.
type Messenger interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
}

// MessageHandler turns one text message into a relay response.
type MessageHandler interface {
	Handle(ctx context.Context, text, baseURL string) (*batch.Response, error)
}

// Handler verifies webhook deliveries and answers text messages.
type Handler struct {
	messenger     Messenger
	messages      MessageHandler
	logger        *slog.Logger
	channelSecret string
}

// NewHandler creates a webhook handler.
func NewHandler(channelSecret string, messenger Messenger, messages MessageHandler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		channelSecret: channelSecret,
		messenger:     messenger,
		messages:      messages,
		logger:        logger,
	}
}

// ServeWebhook verifies req and handles every event in it. Per-event
// failures are logged; only a bad request is returned as an error.
func (h *Handler) ServeWebhook(ctx context.Context, req *http.Request, baseURL string) error {
	cb, err := webhook.ParseRequest(h.channelSecret, req)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return ErrInvalidSignature
		}
		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	for _, event := range cb.Events {
		msg, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		text, ok := msg.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		if err := h.handleText(ctx, msg, strings.TrimSpace(text.Text), baseURL); err != nil {
			h.logger.Error("failed to answer message", "error", err)
		}
	}
	return nil
}

func (h *Handler) handleText(ctx context.Context, event webhook.MessageEvent, text, baseURL string) error {
	resp, err := h.messages.Handle(ctx, text, baseURL)
	if err != nil {
		h.logger.Warn("roster unavailable", "error", err)
		return h.reply(event.ReplyToken, []string{err.Error()})
	}

	delivery := Plan(resp)
	h.logger.Info("relaying receipts",
		"issued", len(resp.Successes),
		"failed", len(resp.Failures),
		"push_calls", len(delivery.Push))

	if err := h.reply(event.ReplyToken, delivery.Reply); err != nil {
		return err
	}

	if len(delivery.Push) == 0 {
		return nil
	}
	to := pushTarget(event.Source)
	if to == "" {
		return fmt.Errorf("no push target for %d remaining messages", len(delivery.Push))
	}

	var errs []error
	for _, lines := range delivery.Push {
		if _, err := h.messenger.PushMessage(&messaging_api.PushMessageRequest{
			To:       to,
			Messages: textMessages(lines),
		}, ""); err != nil {
			errs = append(errs, fmt.Errorf("push failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (h *Handler) reply(token string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if _, err := h.messenger.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: token,
		Messages:   textMessages(lines),
	}); err != nil {
		return fmt.Errorf("reply failed: %w", err)
	}
	return nil
}

// pushTarget prefers the sending user and falls back to the conversation.
func pushTarget(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		if s.UserId != "" {
			return s.UserId
		}
		return s.GroupId
	case webhook.RoomSource:
		if s.UserId != "" {
			return s.UserId
		}
		return s.RoomId
	default:
		return ""
	}
}

func textMessages(lines []string) []messaging_api.MessageInterface {
	msgs := make([]messaging_api.MessageInterface, 0, len(lines))
	for _, line := range lines {
		msgs = append(msgs, messaging_api.TextMessage{Text: line})
	}
	return msgs
}
