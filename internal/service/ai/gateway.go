package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyCompletion is reported when the model answers without any text.
	ErrEmptyCompletion = errors.New("empty completion")
	ErrNotConfigured   = errors.New("completion model not configured")
)

// Completer sends role-tagged messages to a completion endpoint and returns the top completion text.
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message) (string, error)
}

// ChunkFunc receives each piece of a streamed completion. Returning an error stops the stream.
type ChunkFunc func(chunk string) error

// StreamCompleter is a Completer that can also deliver the completion as it is produced.
type StreamCompleter interface {
	Completer
	StreamComplete(ctx context.Context, messages []*schema.Message, onChunk ChunkFunc) (string, error)
}

// GatewayError wraps transport, auth and malformed-response failures of the completion endpoint.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("completion gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Gateway is the Completer backed by an eino chat model.
type Gateway struct {
	model   model.BaseChatModel
	timeout time.Duration
}

// NewGateway wraps chatModel. A non-positive timeout defaults to 30s.
func NewGateway(chatModel model.BaseChatModel, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{model: chatModel, timeout: timeout}
}

// Complete runs a single non-streaming generation. It never retries.
func (g *Gateway) Complete(ctx context.Context, messages []*schema.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	response, err := g.model.Generate(ctx, messages)
	if err != nil {
		return "", &GatewayError{Op: "generate", Err: err}
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", &GatewayError{Op: "generate", Err: ErrEmptyCompletion}
	}

	log.Debug().
		Str("component", "ai").
		Int("messages", len(messages)).
		Int("length", len(response.Content)).
		Dur("elapsed", time.Since(started)).
		Msg("completion received")
	return response.Content, nil
}

// StreamComplete runs a streaming generation, passing every non-empty chunk to
// onChunk and returning the joined text. It never retries.
func (g *Gateway) StreamComplete(ctx context.Context, messages []*schema.Message, onChunk ChunkFunc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	stream, err := g.model.Stream(ctx, messages)
	if err != nil {
		return "", &GatewayError{Op: "stream", Err: err}
	}
	defer stream.Close()

	var sb strings.Builder
	chunks := 0
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &GatewayError{Op: "stream", Err: err}
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		sb.WriteString(msg.Content)
		chunks++
		if onChunk != nil {
			if err := onChunk(msg.Content); err != nil {
				return "", fmt.Errorf("deliver chunk: %w", err)
			}
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", &GatewayError{Op: "stream", Err: ErrEmptyCompletion}
	}

	log.Debug().
		Str("component", "ai").
		Int("messages", len(messages)).
		Int("chunks", chunks).
		Int("length", sb.Len()).
		Dur("elapsed", time.Since(started)).
		Msg("streamed completion received")
	return sb.String(), nil
}

// Disabled stands in for the gateway when no model credentials are configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, []*schema.Message) (string, error) {
	return "", &GatewayError{Op: "generate", Err: ErrNotConfigured}
}

func (Disabled) StreamComplete(context.Context, []*schema.Message, ChunkFunc) (string, error) {
	return "", &GatewayError{Op: "stream", Err: ErrNotConfigured}
}
