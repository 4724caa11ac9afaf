package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates the service configuration. It is built once at start-up
// and handed to constructors; business code never reads the environment.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Commerce  CommerceConfig
	Messaging MessagingConfig
	Database  DatabaseConfig
	Language  LanguageConfig
	Policy    PolicyConfig
	Log       LogConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	commerce, err := loadCommerceConfig()
	if err != nil {
		return nil, err
	}

	messaging, err := loadMessagingConfig()
	if err != nil {
		return nil, err
	}

	database, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Commerce:  commerce,
		Messaging: messaging,
		Database:  database,
		Language:  LanguageConfig{Default: strings.ToLower(getEnvOrDefault("DEFAULT_LANGUAGE", "en"))},
		Policy: PolicyConfig{
			Delivery: strings.TrimSpace(os.Getenv("POLICY_DELIVERY")),
			Return:   strings.TrimSpace(os.Getenv("POLICY_RETURN")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Pretty: getEnvOrDefault("ENVIRONMENT", "development") == "development",
		},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	var origins []string
	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port, CORSOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, CORSOrigins: origins}, nil
}

// AIConfig describes the completion model.
type AIConfig struct {
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	Timeout      time.Duration
	HistoryLimit int
}

// Enabled reports whether credentials and a model were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the chat model described by the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("LLM credentials or model missing: set LLM_API_KEY and LLM_MODEL, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	timeout := c.Timeout
	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
		Timeout:     &timeout,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("LLM_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("LLM_TIMEOUT", 30*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit := 10
	if override, err := parseOptionalIntEnv("HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		historyLimit = *override
		if historyLimit < 0 {
			historyLimit = 0
		}
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("LLM_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("LLM_SECRET_KEY")),
		Model:        getEnvOrDefault("LLM_MODEL", "llama3-8b-8192"),
		BaseURL:      getEnvOrDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		Region:       getEnvOrDefault("LLM_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		Timeout:      timeout,
		HistoryLimit: historyLimit,
	}, nil
}

// CommerceConfig describes the storefront admin API.
type CommerceConfig struct {
	Store         string
	AccessToken   string
	APIVersion    string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	SearchLimit   int
}

// Enabled reports whether the storefront credentials are present.
func (c CommerceConfig) Enabled() bool {
	return (c.Store != "" || c.BaseURL != "") && c.AccessToken != ""
}

// Endpoint returns the admin API root, e.g. https://shop.myshopify.com/admin/api/2024-04.
func (c CommerceConfig) Endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://" + c.Store
	}
	return fmt.Sprintf("%s/admin/api/%s", base, c.APIVersion)
}

func loadCommerceConfig() (CommerceConfig, error) {
	timeout, err := parseDurationEnv("SHOPIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return CommerceConfig{}, err
	}

	rate := 2.0
	if override, err := parseOptionalFloatEnv("SHOPIFY_RATE_LIMIT"); err != nil {
		return CommerceConfig{}, err
	} else if override != nil {
		rate = *override
	}

	searchLimit := 5
	if override, err := parseOptionalIntEnv("SHOPIFY_SEARCH_LIMIT"); err != nil {
		return CommerceConfig{}, err
	} else if override != nil && *override > 0 {
		searchLimit = *override
	}

	return CommerceConfig{
		Store:         strings.TrimSpace(os.Getenv("SHOPIFY_STORE_NAME")),
		AccessToken:   strings.TrimSpace(os.Getenv("SHOPIFY_ACCESS_TOKEN")),
		APIVersion:    getEnvOrDefault("SHOPIFY_API_VERSION", "2024-04"),
		BaseURL:       strings.TrimSpace(os.Getenv("SHOPIFY_BASE_URL")),
		Timeout:       timeout,
		RatePerSecond: rate,
		SearchLimit:   searchLimit,
	}, nil
}

// MessagingConfig describes the WhatsApp Cloud API channel.
type MessagingConfig struct {
	VerifyToken   string
	AccessToken   string
	PhoneNumberID string
	GraphURL      string
	Timeout       time.Duration
}

// Enabled reports whether outbound delivery can be configured.
func (c MessagingConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

func loadMessagingConfig() (MessagingConfig, error) {
	timeout, err := parseDurationEnv("WHATSAPP_TIMEOUT", 10*time.Second)
	if err != nil {
		return MessagingConfig{}, err
	}

	return MessagingConfig{
		VerifyToken:   strings.TrimSpace(os.Getenv("WHATSAPP_VERIFY_TOKEN")),
		AccessToken:   strings.TrimSpace(os.Getenv("WHATSAPP_ACCESS_TOKEN")),
		PhoneNumberID: strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_NUMBER_ID")),
		GraphURL:      getEnvOrDefault("WHATSAPP_GRAPH_URL", "https://graph.facebook.com/v19.0"),
		Timeout:       timeout,
	}, nil
}

// DatabaseConfig selects the conversation store. An empty URL keeps history in memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	maxOpen := 10
	if override, err := parseOptionalIntEnv("DATABASE_MAX_OPEN_CONNS"); err != nil {
		return DatabaseConfig{}, err
	} else if override != nil && *override > 0 {
		maxOpen = *override
	}

	return DatabaseConfig{
		URL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxOpenConns: maxOpen,
	}, nil
}

// LanguageConfig holds the reply language used when detection fails.
type LanguageConfig struct {
	Default string
}

// PolicyConfig overrides the canned policy texts.
type PolicyConfig struct {
	Delivery string
	Return   string
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string
	Pretty bool
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// Bare integers are seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
