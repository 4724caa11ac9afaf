package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/model/chat"
	"github.com/botify/storebot/backend/internal/service/assistant"
)

const (
	defaultReadTimeout = 60 * time.Second
	writeTimeout       = 10 * time.Second
)

// Assistant answers one customer message.
type Assistant interface {
	Respond(ctx context.Context, conversationID, text string) assistant.Reply
}

// Handler keeps a websocket open per widget conversation.
type Handler struct {
	assistant   Assistant
	upgrader    websocket.Upgrader
	readTimeout time.Duration
}

// New creates a websocket handler. An empty origin list accepts every origin.
func New(assistant Assistant, allowedOrigins []string) *Handler {
	return &Handler{
		assistant: assistant,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		readTimeout: defaultReadTimeout,
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{conversationID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversationId"`
	Data           json.RawMessage `json:"data"`
}

// TextMessage is the data of an inbound "text" frame.
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Data           any    `json:"data,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// connection serialises writes; gorilla allows one concurrent writer.
type connection struct {
	conn           *websocket.Conn
	conversationID string
	mu             sync.Mutex
}

func (c *connection) send(msgType string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.conn.WriteJSON(outgoingMessage{
		Type:           msgType,
		ConversationID: c.conversationID,
		Data:           data,
		Timestamp:      time.Now().UnixMilli(),
	})
	if err != nil {
		log.Debug().Err(err).Str("component", "websocket").Str("conversation", c.conversationID).Msg("write failed")
	}
}

func (c *connection) sendError(message string) {
	c.send("error", map[string]string{"message": message})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if !chat.IsWebConversationID(conversationID) {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "websocket").Msg("upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().Str("component", "websocket").Str("conversation", conversationID).Msg("connection opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	extendDeadline := func() error {
		return conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
	_ = extendDeadline()
	conn.SetPongHandler(func(string) error { return extendDeadline() })

	go pingLoop(ctx, conn, h.readTimeout*9/10)

	c := &connection{conn: conn, conversationID: conversationID}
	c.send("connected", nil)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "websocket").Str("conversation", conversationID).Msg("read error")
			}
			return
		}
		if msg.ConversationID != "" && msg.ConversationID != conversationID {
			c.sendError("conversation mismatch")
			_ = extendDeadline()
			continue
		}

		// Pongs are only read between messages, so the deadline restarts
		// once the pipeline has answered.
		h.handleMessage(ctx, c, &msg)
		_ = extendDeadline()
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *connection, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		var text TextMessage
		if err := json.Unmarshal(msg.Data, &text); err != nil || strings.TrimSpace(text.Text) == "" {
			c.sendError("invalid text payload")
			return
		}
		c.send("typing", nil)
		reply := h.assistant.Respond(ctx, c.conversationID, text.Text)
		c.send("reply", reply)
	case "ping":
		c.send("pong", nil)
	default:
		c.sendError("unsupported message type: " + msg.Type)
	}
}

// pingLoop uses WriteControl, which gorilla allows alongside other writers.
func pingLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
