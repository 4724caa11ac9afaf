package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusBadRequest, "message is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"message is required"}`, rec.Body.String())
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)
	SendSSEEvent(rec, rec, "message", map[string]string{"reply": "hi"})

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: message\ndata: {\"reply\":\"hi\"}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}
