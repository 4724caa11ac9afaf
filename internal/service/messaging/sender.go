package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/botify/storebot/backend/internal/config"
)

var ErrNotConfigured = errors.New("whatsapp delivery is not configured")

// DeliveryError reports a failed outbound message.
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("whatsapp send failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("whatsapp send failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Sender delivers text replies through the WhatsApp Cloud API.
type Sender struct {
	httpClient    *http.Client
	graphURL      string
	phoneNumberID string
	accessToken   string
	timeout       time.Duration
}

// NewSender builds a Sender. A nil httpClient uses http.DefaultClient.
func NewSender(cfg config.MessagingConfig, httpClient *http.Client) *Sender {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		httpClient:    httpClient,
		graphURL:      strings.TrimRight(cfg.GraphURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		timeout:       timeout,
	}
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// SendText sends one text message to a WhatsApp user.
func (s *Sender) SendText(ctx context.Context, to, text string) error {
	if s.accessToken == "" || s.phoneNumberID == "" {
		return ErrNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return &DeliveryError{Err: errors.New("recipient is required")}
	}

	payload, err := json.Marshal(textMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: text},
	})
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("encode message: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/messages", s.graphURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &DeliveryError{StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	log.Debug().Str("component", "messaging").Str("to", to).Int("length", len(text)).Msg("whatsapp message sent")
	return nil
}
