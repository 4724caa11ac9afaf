package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botify/storebot/backend/internal/config"
)

func TestSendTextPostsCloudAPIPayload(t *testing.T) {
	var got textMessage
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	t.Cleanup(srv.Close)

	sender := NewSender(config.MessagingConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		GraphURL:      srv.URL + "/",
	}, srv.Client())

	require.NoError(t, sender.SendText(context.Background(), "491701234567", "Hello!"))
	assert.Equal(t, "/12345/messages", path)
	assert.Equal(t, "Bearer token", auth)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "491701234567", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "Hello!", got.Text.Body)
}

func TestSendTextReportsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	sender := NewSender(config.MessagingConfig{AccessToken: "bad", PhoneNumberID: "1", GraphURL: srv.URL}, srv.Client())

	err := sender.SendText(context.Background(), "1", "hi")
	var delivery *DeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Equal(t, http.StatusUnauthorized, delivery.StatusCode)
	assert.Contains(t, delivery.Error(), "Invalid OAuth access token")
}

func TestSendTextRequiresConfiguration(t *testing.T) {
	sender := NewSender(config.MessagingConfig{GraphURL: "http://127.0.0.1:1"}, nil)
	err := sender.SendText(context.Background(), "1", "hi")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
