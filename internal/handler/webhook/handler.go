package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/service/assistant"
)

const maxBodyBytes = 1 << 20

// Assistant answers one customer message.
type Assistant interface {
	Respond(ctx context.Context, conversationID, text string) assistant.Reply
}

// Sender delivers a reply back to the customer.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
}

// Handler receives WhatsApp Cloud API webhooks. Each sender phone number is
// its own conversation.
type Handler struct {
	assistant   Assistant
	sender      Sender
	verifyToken string
	dispatch    func(func())
}

// New creates a webhook handler. A nil sender logs replies instead of sending them.
func New(assistant Assistant, sender Sender, verifyToken string) *Handler {
	return &Handler{
		assistant:   assistant,
		sender:      sender,
		verifyToken: verifyToken,
		dispatch:    func(fn func()) { go fn() },
	}
}

// RegisterRoutes mounts the webhook routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/webhook", h.handleVerify)
	r.Post("/webhook", h.handleInbound)
}

// InboundText is one customer text extracted from a webhook delivery.
type InboundText struct {
	From string
	ID   string
	Body string
}

type notification struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []struct {
					From string `json:"from"`
					ID   string `json:"id"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ExtractTexts returns the text messages of a notification. Status callbacks
// and non-text messages are skipped.
func ExtractTexts(body []byte) ([]InboundText, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, err
	}

	var texts []InboundText
	for _, entry := range n.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || strings.TrimSpace(msg.Text.Body) == "" || msg.From == "" {
					continue
				}
				texts = append(texts, InboundText{From: msg.From, ID: msg.ID, Body: msg.Text.Body})
			}
		}
	}
	return texts, nil
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") != "subscribe" || h.verifyToken == "" || q.Get("hub.verify_token") != h.verifyToken {
		log.Warn().Str("component", "webhook").Str("mode", q.Get("hub.mode")).Msg("webhook verification rejected")
		http.Error(w, "verification failed", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

// handleInbound always acknowledges with 200 so the platform does not redeliver.
func (h *Handler) handleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn().Err(err).Str("component", "webhook").Msg("failed to read webhook body")
		w.WriteHeader(http.StatusOK)
		return
	}

	texts, err := ExtractTexts(body)
	if err != nil {
		log.Warn().Err(err).Str("component", "webhook").Msg("ignoring malformed webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	for _, text := range texts {
		h.dispatch(func() { h.reply(ctx, text) })
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) reply(ctx context.Context, text InboundText) {
	reply := h.assistant.Respond(ctx, text.From, text.Body)

	if h.sender == nil {
		log.Warn().Str("component", "webhook").Str("to", text.From).Str("reply", reply.Text).Msg("whatsapp delivery disabled, reply not sent")
		return
	}
	if err := h.sender.SendText(ctx, text.From, reply.Text); err != nil {
		log.Error().Err(err).Str("component", "webhook").Str("to", text.From).Str("message_id", text.ID).Msg("failed to deliver reply")
	}
}
