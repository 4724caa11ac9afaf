package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebConversationID(t *testing.T) {
	id := NewWebConversationID()
	assert.True(t, strings.HasPrefix(id, WebConversationPrefix))
	assert.True(t, IsWebConversationID(id))

	for _, other := range []string{
		"",
		"+15551234567",
		"15551234567",
		"web:",
		"web:not-a-uuid",
		"web:{" + strings.TrimPrefix(id, WebConversationPrefix) + "}",
		strings.TrimPrefix(id, WebConversationPrefix),
	} {
		assert.False(t, IsWebConversationID(other), other)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("system").Valid())
}
