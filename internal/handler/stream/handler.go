package stream

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/model/chat"
	"github.com/botify/storebot/backend/internal/service/ai"
	"github.com/botify/storebot/backend/internal/service/assistant"
	"github.com/botify/storebot/backend/pkg/utils"
)

// Assistant answers one customer message, passing generated text to onChunk as it is produced.
type Assistant interface {
	RespondStream(ctx context.Context, conversationID, text string, onChunk ai.ChunkFunc) assistant.Reply
}

// Handler delivers replies over Server-Sent Events. Generated text arrives as
// chunk events, followed by one message event carrying the complete reply.
type Handler struct {
	assistant Assistant
}

// New creates a stream handler.
func New(assistant Assistant) *Handler {
	return &Handler{assistant: assistant}
}

// Event is the payload of every SSE frame.
type Event struct {
	ConversationID string `json:"conversationId"`
	Delta          string `json:"delta,omitempty"`
	Reply          string `json:"reply,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Source         string `json:"source,omitempty"`
}

// RegisterRoutes mounts the stream route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{conversationID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if !chat.IsWebConversationID(conversationID) {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	utils.SendSSEEvent(w, flusher, "start", Event{ConversationID: conversationID})

	ctx := r.Context()
	reply := h.assistant.RespondStream(ctx, conversationID, message, func(chunk string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		utils.SendSSEEvent(w, flusher, "chunk", Event{ConversationID: conversationID, Delta: chunk})
		return nil
	})
	if ctx.Err() != nil {
		log.Debug().Str("component", "stream").Str("conversation", conversationID).Msg("client went away before reply")
		return
	}

	utils.SendSSEEvent(w, flusher, "message", Event{
		ConversationID: conversationID,
		Reply:          reply.Text,
		Intent:         string(reply.Intent),
		Source:         string(reply.Source),
	})
	utils.SendSSEEvent(w, flusher, "end", Event{ConversationID: conversationID})
}
