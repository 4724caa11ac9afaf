package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/analysis/language"
	"github.com/botify/storebot/backend/internal/config"
	"github.com/botify/storebot/backend/internal/database"
	"github.com/botify/storebot/backend/internal/handler/webhook"
	"github.com/botify/storebot/backend/internal/model/policy"
	"github.com/botify/storebot/backend/internal/service/ai"
	"github.com/botify/storebot/backend/internal/service/assistant"
	chatService "github.com/botify/storebot/backend/internal/service/chat"
	"github.com/botify/storebot/backend/internal/service/commerce"
	"github.com/botify/storebot/backend/internal/service/intent"
	"github.com/botify/storebot/backend/internal/service/messaging"
)

// Components is the wired service graph shared by the server and the CLI tools.
type Components struct {
	Assistant  *assistant.Service
	Classifier *intent.Classifier
	History    chatService.Store
	Policies   policy.Store
	Sender     webhook.Sender
	Detector   *language.Detector
	close      func() error
}

// Close releases the database connection, if any.
func (c *Components) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// Build wires every service from cfg. Missing model or storefront
// credentials degrade the assistant instead of failing start-up.
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	completer, err := buildCompleter(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	history, closeDB, err := buildHistory(cfg.Database)
	if err != nil {
		return nil, err
	}

	if !cfg.Commerce.Enabled() {
		log.Warn().Str("component", "app").Msg("storefront credentials missing, product and order lookups will fail")
	}
	shop := commerce.NewClient(cfg.Commerce, &http.Client{})

	policies := policy.NewMemoryStore(policy.WithOverrides(policy.Seed(), map[string]string{
		policy.DeliveryID: cfg.Policy.Delivery,
		policy.ReturnID:   cfg.Policy.Return,
	}))

	detector := language.NewDetector(cfg.Language.Default)
	classifier := intent.NewClassifier(completer)

	svc := assistant.NewService(
		history,
		classifier,
		shop,
		ai.NewResponder(completer, detector, cfg.AI.HistoryLimit),
		policies,
		cfg.AI.HistoryLimit,
	)

	components := &Components{
		Assistant:  svc,
		Classifier: classifier,
		History:    history,
		Policies:   policies,
		Detector:   detector,
		close:      closeDB,
	}
	if cfg.Messaging.Enabled() {
		components.Sender = messaging.NewSender(cfg.Messaging, &http.Client{})
	} else {
		log.Warn().Str("component", "app").Msg("whatsapp credentials missing, webhook replies will only be logged")
	}
	return components, nil
}

func buildCompleter(ctx context.Context, cfg config.AIConfig) (ai.Completer, error) {
	if !cfg.Enabled() {
		log.Warn().Str("component", "app").Msg("LLM credentials missing, every message will receive the apology reply")
		return ai.Disabled{}, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}
	log.Info().Str("component", "app").Str("model", cfg.Model).Msg("chat model initialized")
	return ai.NewGateway(chatModel, cfg.Timeout), nil
}

func buildHistory(cfg config.DatabaseConfig) (chatService.Store, func() error, error) {
	if cfg.URL == "" {
		log.Info().Str("component", "app").Msg("DATABASE_URL not set, keeping conversation history in memory")
		return chatService.NewService(), nil, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := chatService.NewGormStore(db)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	log.Info().Str("component", "app").Msg("conversation history stored in database")
	return store, sqlDB.Close, nil
}
