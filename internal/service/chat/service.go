package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/botify/storebot/backend/internal/model/chat"
)

var (
	ErrConversationRequired = errors.New("conversation id is required")
	ErrInvalidRole          = errors.New("invalid turn role")
)

// Store is the conversation log consumed by the assistant.
type Store interface {
	// Append persists one turn and returns it with id and timestamp assigned.
	Append(ctx context.Context, conversationID string, role chat.Role, content string) (chat.Turn, error)
	// RecentHistory returns at most limit of the latest turns, oldest first.
	// A non-positive limit returns the whole conversation.
	RecentHistory(ctx context.Context, conversationID string, limit int) ([]chat.Turn, error)
}

// Service is an in-memory Store suitable for development and tests.
type Service struct {
	mu    sync.RWMutex
	turns map[string][]chat.Turn
	now   func() time.Time
}

// NewService bootstraps the in-memory conversation store.
func NewService() *Service {
	return &Service{
		turns: make(map[string][]chat.Turn),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Append appends a turn to the conversation log. Timestamps are strictly increasing per conversation.
func (s *Service) Append(_ context.Context, conversationID string, role chat.Role, content string) (chat.Turn, error) {
	if err := validateTurn(conversationID, role); err != nil {
		return chat.Turn{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.turns[conversationID]
	createdAt := s.now()
	if n := len(turns); n > 0 && !createdAt.After(turns[n-1].CreatedAt) {
		createdAt = turns[n-1].CreatedAt.Add(time.Microsecond)
	}

	turn := chat.Turn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      createdAt,
	}
	s.turns[conversationID] = append(turns, turn)
	return turn, nil
}

// RecentHistory returns the latest turns of a conversation in chronological order.
func (s *Service) RecentHistory(_ context.Context, conversationID string, limit int) ([]chat.Turn, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrConversationRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[conversationID]
	start := 0
	if limit > 0 && len(turns) > limit {
		start = len(turns) - limit
	}

	copied := make([]chat.Turn, len(turns)-start)
	copy(copied, turns[start:])
	return copied, nil
}

func validateTurn(conversationID string, role chat.Role) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrConversationRequired
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
