package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/model/chat"
)

// LanguageDetector guesses the language of customer text, returning a default when unsure.
type LanguageDetector interface {
	Detect(text string) string
}

// Responder produces the customer-facing reply grounded on store data and history.
type Responder struct {
	completer    Completer
	detector     LanguageDetector
	template     prompt.ChatTemplate
	historyLimit int
}

// NewResponder creates a Responder. historyLimit caps the prior turns sent to the model; zero sends none.
func NewResponder(completer Completer, detector LanguageDetector, historyLimit int) *Responder {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("context", true),
		schema.MessagesPlaceholder("history", true),
		schema.MessagesPlaceholder("query", true),
	)

	return &Responder{
		completer:    completer,
		detector:     detector,
		template:     template,
		historyLimit: historyLimit,
	}
}

// GenerateReply asks the model for a reply. storeContext and input may be empty.
// history must be in chronological order. The completion text is returned verbatim.
func (r *Responder) GenerateReply(ctx context.Context, conversationID, storeContext, input string, history []*schema.Message) (string, error) {
	lang := r.detector.Detect(input)

	messages, err := r.buildPrompt(ctx, lang, storeContext, input, history)
	if err != nil {
		return "", err
	}

	reply, err := r.completer.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("component", "ai").
		Str("conversation", conversationID).
		Str("lang", lang).
		Bool("grounded", storeContext != "").
		Int("history", len(history)).
		Int("length", len(reply)).
		Msg("generated reply")
	return reply, nil
}

// StreamReply is GenerateReply with the completion delivered through onChunk as it arrives.
// Completers that cannot stream hand over the whole reply as one chunk.
func (r *Responder) StreamReply(ctx context.Context, conversationID, storeContext, input string, history []*schema.Message, onChunk ChunkFunc) (string, error) {
	lang := r.detector.Detect(input)

	messages, err := r.buildPrompt(ctx, lang, storeContext, input, history)
	if err != nil {
		return "", err
	}

	var reply string
	if streamer, ok := r.completer.(StreamCompleter); ok {
		reply, err = streamer.StreamComplete(ctx, messages, onChunk)
		if err != nil {
			return "", err
		}
	} else {
		reply, err = r.completer.Complete(ctx, messages)
		if err != nil {
			return "", err
		}
		if onChunk != nil {
			if err := onChunk(reply); err != nil {
				return "", fmt.Errorf("deliver chunk: %w", err)
			}
		}
	}

	log.Info().
		Str("component", "ai").
		Str("conversation", conversationID).
		Str("lang", lang).
		Bool("grounded", storeContext != "").
		Bool("streamed", true).
		Int("history", len(history)).
		Int("length", len(reply)).
		Msg("generated reply")
	return reply, nil
}

func (r *Responder) buildPrompt(ctx context.Context, lang, storeContext, input string, history []*schema.Message) ([]*schema.Message, error) {
	vars := map[string]any{
		"system":  SystemInstruction(lang),
		"history": r.trimHistory(history),
	}
	if strings.TrimSpace(storeContext) != "" {
		vars["context"] = []*schema.Message{schema.SystemMessage(storeContext)}
	}
	if strings.TrimSpace(input) != "" {
		vars["query"] = []*schema.Message{schema.UserMessage(input)}
	}

	messages, err := r.template.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to format reply prompt: %w", err)
	}
	return messages, nil
}

func (r *Responder) trimHistory(history []*schema.Message) []*schema.Message {
	if r.historyLimit <= 0 {
		return nil
	}
	if len(history) > r.historyLimit {
		return history[len(history)-r.historyLimit:]
	}
	return history
}

// HistoryMessages maps stored turns onto prompt messages, keeping their order.
func HistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
