package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/model/chat"
	"github.com/botify/storebot/backend/internal/model/intent"
	"github.com/botify/storebot/backend/internal/service/assistant"
	chatService "github.com/botify/storebot/backend/internal/service/chat"
	"github.com/botify/storebot/backend/pkg/utils"
)

const maxTranscriptLimit = 200

// Assistant answers one customer message.
type Assistant interface {
	Respond(ctx context.Context, conversationID, text string) assistant.Reply
}

// Handler serves the widget chat endpoint and conversation transcripts.
// Only widget conversation ids are accepted, so conversations of messaging
// channels are neither readable nor writable over HTTP.
type Handler struct {
	assistant Assistant
	history   chatService.Store
}

// New creates a chat handler.
func New(assistant Assistant, history chatService.Store) *Handler {
	return &Handler{
		assistant: assistant,
		history:   history,
	}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/conversations", h.handleCreateConversation)
	r.Post("/chat", h.handleChat)
	r.Get("/conversations/{conversationID}/messages", h.handleTranscript)
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type chatResponse struct {
	Reply          string        `json:"reply"`
	ConversationID string        `json:"conversationId"`
	Intent         intent.Intent `json:"intent"`
	Source         string        `json:"source"`
}

func (h *Handler) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"conversationId": chat.NewWebConversationID(),
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	conversationID := strings.TrimSpace(payload.ConversationID)
	switch {
	case conversationID == "":
		conversationID = chat.NewWebConversationID()
	case !chat.IsWebConversationID(conversationID):
		utils.RespondError(w, http.StatusBadRequest, "invalid conversationId")
		return
	}

	reply := h.assistant.Respond(r.Context(), conversationID, message)
	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Reply:          reply.Text,
		ConversationID: conversationID,
		Intent:         reply.Intent,
		Source:         string(reply.Source),
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if !chat.IsWebConversationID(conversationID) {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxTranscriptLimit)
	}

	turns, err := h.history.RecentHistory(r.Context(), conversationID, limit)
	if err != nil {
		log.Error().Err(err).Str("component", "handler").Str("conversation", conversationID).Msg("failed to load transcript")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if turns == nil {
		turns = []chat.Turn{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"conversationId": conversationID,
		"messages":       turns,
	})
}
