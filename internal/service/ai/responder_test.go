package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botify/storebot/backend/internal/model/chat"
)

type recordingCompleter struct {
	reply string
	err   error
	calls [][]*schema.Message
}

func (c *recordingCompleter) Complete(_ context.Context, messages []*schema.Message) (string, error) {
	c.calls = append(c.calls, messages)
	return c.reply, c.err
}

type fixedDetector string

func (d fixedDetector) Detect(string) string { return string(d) }

func TestGenerateReplyPromptLayout(t *testing.T) {
	completer := &recordingCompleter{reply: "The Classic Tee costs $20."}
	responder := NewResponder(completer, fixedDetector("en"), 10)

	history := []*schema.Message{
		schema.UserMessage("hi"),
		schema.AssistantMessage("Hello! How can I help?", nil),
	}
	got, err := responder.GenerateReply(context.Background(), "c1", "$20", "What's the price of the Classic Tee?", history)
	require.NoError(t, err)
	assert.Equal(t, "The Classic Tee costs $20.", got)

	require.Len(t, completer.calls, 1)
	msgs := completer.calls[0]
	require.Len(t, msgs, 5)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, SystemInstruction("en"), msgs[0].Content)
	assert.Equal(t, schema.System, msgs[1].Role)
	assert.Equal(t, "$20", msgs[1].Content)
	assert.Equal(t, "hi", msgs[2].Content)
	assert.Equal(t, schema.Assistant, msgs[3].Role)
	assert.Equal(t, schema.User, msgs[4].Role)
	assert.Equal(t, "What's the price of the Classic Tee?", msgs[4].Content)
}

func TestGenerateReplyWithoutContextOrInput(t *testing.T) {
	completer := &recordingCompleter{reply: "ok"}
	responder := NewResponder(completer, fixedDetector("en"), 10)

	_, err := responder.GenerateReply(context.Background(), "c1", "", "", []*schema.Message{schema.UserMessage("earlier")})
	require.NoError(t, err)

	msgs := completer.calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "earlier", msgs[1].Content)
}

func TestGenerateReplyUsesDetectedLanguage(t *testing.T) {
	completer := &recordingCompleter{reply: "hola"}
	responder := NewResponder(completer, fixedDetector("es"), 10)

	_, err := responder.GenerateReply(context.Background(), "c1", "", "¿Dónde está mi pedido?", nil)
	require.NoError(t, err)
	assert.Equal(t, SystemInstruction("es"), completer.calls[0][0].Content)
}

func TestGenerateReplyCapsHistory(t *testing.T) {
	completer := &recordingCompleter{reply: "ok"}
	responder := NewResponder(completer, fixedDetector("en"), 3)

	var history []*schema.Message
	for i := 0; i < 8; i++ {
		history = append(history, schema.UserMessage(fmt.Sprintf("m%d", i)))
	}
	_, err := responder.GenerateReply(context.Background(), "c1", "", "now", history)
	require.NoError(t, err)

	msgs := completer.calls[0]
	require.Len(t, msgs, 5)
	assert.Equal(t, "m5", msgs[1].Content)
	assert.Equal(t, "m7", msgs[3].Content)
	assert.Equal(t, "now", msgs[4].Content)
}

func TestGenerateReplyKeepsBracesVerbatim(t *testing.T) {
	completer := &recordingCompleter{reply: "ok"}
	responder := NewResponder(completer, fixedDetector("en"), 10)

	_, err := responder.GenerateReply(context.Background(), "c1", "Sizes: {S, M}", "is {L} there?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Sizes: {S, M}", completer.calls[0][1].Content)
	assert.Equal(t, "is {L} there?", completer.calls[0][2].Content)
}

func TestGenerateReplyPropagatesGatewayError(t *testing.T) {
	cause := &GatewayError{Op: "generate", Err: errors.New("boom")}
	responder := NewResponder(&recordingCompleter{err: cause}, fixedDetector("en"), 10)

	_, err := responder.GenerateReply(context.Background(), "c1", "", "hi", nil)
	var gwErr *GatewayError
	assert.ErrorAs(t, err, &gwErr)
}

func TestHistoryMessagesSkipsUnknownRoles(t *testing.T) {
	turns := []chat.Turn{
		{Role: chat.RoleUser, Content: "a"},
		{Role: chat.Role("system"), Content: "ignored"},
		{Role: chat.RoleAssistant, Content: "b"},
	}
	msgs := HistoryMessages(turns)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, schema.Assistant, msgs[1].Role)
	assert.Nil(t, HistoryMessages(nil))
}

type chunkingCompleter struct {
	recordingCompleter
	chunks []string
}

func (c *chunkingCompleter) StreamComplete(_ context.Context, messages []*schema.Message, onChunk ChunkFunc) (string, error) {
	c.calls = append(c.calls, messages)
	for _, chunk := range c.chunks {
		if err := onChunk(chunk); err != nil {
			return "", err
		}
	}
	return strings.Join(c.chunks, ""), nil
}

func TestStreamReplyForwardsChunks(t *testing.T) {
	completer := &chunkingCompleter{chunks: []string{"Order 1001 ", "has shipped."}}
	responder := NewResponder(completer, fixedDetector("en"), 10)

	var got []string
	reply, err := responder.StreamReply(context.Background(), "c1", "Status: shipped", "where is 1001?", nil, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Order 1001 has shipped.", reply)
	assert.Equal(t, []string{"Order 1001 ", "has shipped."}, got)

	require.Len(t, completer.calls, 1)
	assert.Equal(t, "Status: shipped", completer.calls[0][1].Content)
}

func TestStreamReplyFallsBackToSingleChunk(t *testing.T) {
	completer := &recordingCompleter{reply: "Hello!"}
	responder := NewResponder(completer, fixedDetector("en"), 10)

	var got []string
	reply, err := responder.StreamReply(context.Background(), "c1", "", "hi", nil, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)
	assert.Equal(t, []string{"Hello!"}, got)
}

func TestStreamReplyPropagatesGatewayError(t *testing.T) {
	responder := NewResponder(Disabled{}, fixedDetector("en"), 10)

	_, err := responder.StreamReply(context.Background(), "c1", "", "hi", nil, func(string) error { return nil })
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
