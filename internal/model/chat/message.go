package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a persisted turn role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn persists one message of a conversation. ConversationID is the
// customer's channel identity (phone number, widget session id).
type Turn struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// WebConversationPrefix marks conversation ids issued to the storefront widget.
// Messaging channels key conversations by their own identity (a phone number),
// which never carries this prefix.
const WebConversationPrefix = "web:"

// NewWebConversationID issues a fresh widget conversation id.
func NewWebConversationID() string {
	return WebConversationPrefix + uuid.NewString()
}

// IsWebConversationID reports whether id was issued by NewWebConversationID.
func IsWebConversationID(id string) bool {
	rest, ok := strings.CutPrefix(id, WebConversationPrefix)
	if !ok || len(rest) != 36 {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
