package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/model/intent"
	"github.com/botify/storebot/backend/internal/service/ai"
)

// Classifier extracts the intent and entities of a customer message with one completion call.
type Classifier struct {
	completer ai.Completer
	template  prompt.ChatTemplate
}

// NewClassifier creates a Classifier using completer.
func NewClassifier(completer ai.Completer) *Classifier {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(extractionSystemPrompt),
		schema.UserMessage(extractionUserPrompt),
	)
	return &Classifier{completer: completer, template: template}
}

// Classify never retries. Unparseable output degrades to the generic intent;
// only completion gateway failures are returned as errors.
func (c *Classifier) Classify(ctx context.Context, userMessage string) (intent.Analysis, error) {
	messages, err := c.template.Format(ctx, map[string]any{
		"message": strings.TrimSpace(userMessage),
	})
	if err != nil {
		return intent.Default(), fmt.Errorf("failed to format extraction prompt: %w", err)
	}

	output, err := c.completer.Complete(ctx, messages)
	if err != nil {
		return intent.Default(), fmt.Errorf("intent classification: %w", err)
	}

	analysis := Parse(output)
	log.Debug().
		Str("component", "intent").
		Str("intent", string(analysis.Intent)).
		Str("product", analysis.ProductName).
		Str("order", analysis.OrderID).
		Str("info", string(analysis.Info)).
		Msg("classified message")
	return analysis, nil
}

const extractionSystemPrompt = "You extract intent and relevant data from customer messages. " +
	"Answer only with the requested lines, no explanations."

const extractionUserPrompt = `Given this customer message, identify the intent and extract any relevant entities.

Format:
intent: one of [product_info, order_status, delivery_policy, return_policy, generic]
product_name: <if applicable>
order_id: <if applicable>
email: <if applicable>
info: one of [price, stock, stock_by_variant, color, size, variants] <if applicable>

Message: "{message}"`
