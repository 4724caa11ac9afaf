package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/model/chat"
	"github.com/botify/storebot/backend/internal/model/commerce"
	"github.com/botify/storebot/backend/internal/model/intent"
	"github.com/botify/storebot/backend/internal/model/policy"
	"github.com/botify/storebot/backend/internal/service/ai"
	chatService "github.com/botify/storebot/backend/internal/service/chat"
	commerceService "github.com/botify/storebot/backend/internal/service/commerce"
)

// Fixed replies that never go through the language model.
const (
	MsgProductNotFound = "Sorry, I couldn't find a product with that name in our store."
	MsgOrderNotFound   = "Sorry, I couldn't find an order matching those details."
	MsgApology         = "Sorry, something went wrong on our side. Please try again in a moment."
)

var ErrEmptyMessage = errors.New("message is required")

// Classifier extracts intent and entities from a customer message.
type Classifier interface {
	Classify(ctx context.Context, userMessage string) (intent.Analysis, error)
}

// Commerce fetches storefront records.
type Commerce interface {
	FindProductByTitle(ctx context.Context, name string) (commerce.ProductLookup, error)
	FindOrder(ctx context.Context, orderID, email string) (commerce.OrderLookup, error)
}

// Generator produces the final reply text, either whole or chunk by chunk.
type Generator interface {
	GenerateReply(ctx context.Context, conversationID, storeContext, input string, history []*schema.Message) (string, error)
	StreamReply(ctx context.Context, conversationID, storeContext, input string, history []*schema.Message, onChunk ai.ChunkFunc) (string, error)
}

// Source tells how a reply was produced.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceCanned    Source = "canned"
	SourceNotFound  Source = "not_found"
	SourceFallback  Source = "fallback"
)

// Reply is the outcome of handling one inbound message.
type Reply struct {
	Text   string        `json:"reply"`
	Intent intent.Intent `json:"intent"`
	Source Source        `json:"source"`
}

// Service runs the classify, retrieve, generate pipeline for one message at a time.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store        chatService.Store
	classifier   Classifier
	commerce     Commerce
	generator    Generator
	policies     policy.Store
	historyLimit int
}

// NewService wires the pipeline collaborators. historyLimit bounds the turns loaded per message.
func NewService(store chatService.Store, classifier Classifier, shop Commerce, generator Generator, policies policy.Store, historyLimit int) *Service {
	return &Service{
		store:        store,
		classifier:   classifier,
		commerce:     shop,
		generator:    generator,
		policies:     policies,
		historyLimit: historyLimit,
	}
}

// HandleMessage answers one customer message. Lookup misses are answered with
// fixed messages; only gateway failures are returned as errors.
func (s *Service) HandleMessage(ctx context.Context, conversationID, text string) (Reply, error) {
	return s.handle(ctx, conversationID, text, nil)
}

// HandleMessageStream is HandleMessage with generated text also passed to onChunk
// as the model produces it. Canned and not-found replies produce no chunks.
func (s *Service) HandleMessageStream(ctx context.Context, conversationID, text string, onChunk ai.ChunkFunc) (Reply, error) {
	return s.handle(ctx, conversationID, text, onChunk)
}

func (s *Service) handle(ctx context.Context, conversationID, text string, onChunk ai.ChunkFunc) (Reply, error) {
	conversationID = strings.TrimSpace(conversationID)
	text = strings.TrimSpace(text)
	if conversationID == "" {
		return Reply{}, chatService.ErrConversationRequired
	}
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	history := s.loadHistory(ctx, conversationID)
	s.saveTurn(ctx, conversationID, chat.RoleUser, text)

	analysis, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return Reply{}, err
	}

	reply, err := s.route(ctx, conversationID, text, analysis, history, onChunk)
	if err != nil {
		return Reply{}, err
	}

	s.saveTurn(ctx, conversationID, chat.RoleAssistant, reply.Text)

	log.Info().
		Str("component", "assistant").
		Str("conversation", conversationID).
		Str("intent", string(reply.Intent)).
		Str("source", string(reply.Source)).
		Msg("message handled")
	return reply, nil
}

// Respond is HandleMessage for delivery surfaces: it always yields text to send,
// replacing failures with an apology that is also recorded in the history
// while the caller is still listening.
func (s *Service) Respond(ctx context.Context, conversationID, text string) Reply {
	return s.respond(ctx, conversationID, text, nil)
}

// RespondStream is Respond with generated text streamed through onChunk.
// Chunks already delivered before a failure are followed by the apology reply.
func (s *Service) RespondStream(ctx context.Context, conversationID, text string, onChunk ai.ChunkFunc) Reply {
	return s.respond(ctx, conversationID, text, onChunk)
}

func (s *Service) respond(ctx context.Context, conversationID, text string, onChunk ai.ChunkFunc) Reply {
	reply, err := s.handle(ctx, conversationID, text, onChunk)
	if err == nil {
		return reply
	}

	log.Error().
		Err(err).
		Str("component", "assistant").
		Str("conversation", conversationID).
		Msg("message handling failed, sending apology")

	// A cancelled caller never sees the apology, so it stays out of the history.
	if ctx.Err() == nil && strings.TrimSpace(conversationID) != "" && strings.TrimSpace(text) != "" {
		s.saveTurn(ctx, strings.TrimSpace(conversationID), chat.RoleAssistant, MsgApology)
	}
	return Reply{Text: MsgApology, Intent: intent.Generic, Source: SourceFallback}
}

func (s *Service) route(ctx context.Context, conversationID, text string, analysis intent.Analysis, history []*schema.Message, onChunk ai.ChunkFunc) (Reply, error) {
	switch {
	case analysis.Intent == intent.ProductInfo && analysis.ProductName != "":
		lookup, err := s.commerce.FindProductByTitle(ctx, analysis.ProductName)
		if err != nil {
			return Reply{}, err
		}
		if !lookup.Found {
			return Reply{Text: MsgProductNotFound, Intent: analysis.Intent, Source: SourceNotFound}, nil
		}
		storeContext := commerceService.BuildContext(lookup.Product, analysis.Info)
		return s.generate(ctx, conversationID, storeContext, text, history, analysis.Intent, onChunk)

	case analysis.Intent == intent.OrderStatus && analysis.HasOrderReference():
		lookup, err := s.commerce.FindOrder(ctx, analysis.OrderID, analysis.Email)
		if err != nil {
			return Reply{}, err
		}
		if !lookup.Found {
			return Reply{Text: MsgOrderNotFound, Intent: analysis.Intent, Source: SourceNotFound}, nil
		}
		return s.generate(ctx, conversationID, commerceService.OrderContext(lookup.Order), text, history, analysis.Intent, onChunk)

	case analysis.Intent == intent.DeliveryPolicy || analysis.Intent == intent.ReturnPolicy:
		if p, ok := s.policies.FindByIntent(analysis.Intent); ok {
			return Reply{Text: p.Text, Intent: analysis.Intent, Source: SourceCanned}, nil
		}
		log.Warn().Str("component", "assistant").Str("intent", string(analysis.Intent)).Msg("no policy configured, answering generically")
	}

	// Generic questions and intents missing their entity are answered from history alone.
	return s.generate(ctx, conversationID, "", text, history, analysis.Intent, onChunk)
}

func (s *Service) generate(ctx context.Context, conversationID, storeContext, text string, history []*schema.Message, in intent.Intent, onChunk ai.ChunkFunc) (Reply, error) {
	var (
		reply string
		err   error
	)
	if onChunk != nil {
		reply, err = s.generator.StreamReply(ctx, conversationID, storeContext, text, history, onChunk)
	} else {
		reply, err = s.generator.GenerateReply(ctx, conversationID, storeContext, text, history)
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: reply, Intent: in, Source: SourceGenerated}, nil
}

func (s *Service) loadHistory(ctx context.Context, conversationID string) []*schema.Message {
	turns, err := s.store.RecentHistory(ctx, conversationID, s.historyLimit)
	if err != nil {
		log.Warn().Err(err).Str("component", "assistant").Str("conversation", conversationID).Msg("failed to load history, continuing without it")
		return nil
	}
	return ai.HistoryMessages(turns)
}

func (s *Service) saveTurn(ctx context.Context, conversationID string, role chat.Role, text string) {
	if _, err := s.store.Append(ctx, conversationID, role, text); err != nil {
		log.Warn().Err(err).Str("component", "assistant").Str("conversation", conversationID).Str("role", string(role)).Msg("failed to save turn")
	}
}
