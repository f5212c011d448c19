package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, now time.Time) (*Handler, *captureListener) {
	t.Helper()

	processor := newTestProcessor(t)
	listener := &captureListener{}
	processor.AddListener(listener)

	verifier := fixedVerifier(testSecret, 30*time.Minute, now)
	return NewHandler(quietLogger(), verifier, processor), listener
}

func postSigned(handler *Handler, secret string, now time.Time, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signBody(secret, now.Unix(), body))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAcceptsTranscriptionEvent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, listener := newTestHandler(t, now)

	body := []byte(`{
		"type": "post_call_transcription",
		"event_timestamp": 1700000000,
		"data": {
			"agent_id": "agent_1",
			"conversation_id": "conv_123",
			"status": "done",
			"transcript": [
				{"role": "agent", "message": "Good morning, how was your breakfast?"},
				{"role": "user", "message": "I had scrambled eggs and toast for breakfast"}
			]
		}
	}`)

	rec := postSigned(handler, testSecret, now, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "received", resp["status"])

	require.Len(t, listener.results, 1)
	assert.Equal(t, "conv_123", listener.results[0].ConversationID)
	assert.Equal(t, 2, listener.results[0].TurnCount)
}

func TestHandlerRejectsMissingSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, listener := newTestHandler(t, now)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, listener.results)
}

func TestHandlerRejectsInvalidSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, listener := newTestHandler(t, now)

	rec := postSigned(handler, "wsec_wrong_secret", now, []byte(`{"type":"post_call_transcription","data":{}}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, listener.results)
}

func TestHandlerRejectsStaleSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, listener := newTestHandler(t, now)

	body := []byte(`{"type":"post_call_transcription","data":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signBody(testSecret, now.Add(-31*time.Minute).Unix(), body))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, listener.results)
}

func TestHandlerRejectsMalformedJSON(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, listener := newTestHandler(t, now)

	rec := postSigned(handler, testSecret, now, []byte(`{"type": not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, listener.results)
}

func TestHandlerRejectsNonPOST(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, _ := newTestHandler(t, now)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandlerAcknowledgesAudioEvent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, listener := newTestHandler(t, now)

	body := []byte(`{"type":"post_call_audio","data":{"conversation_id":"conv_123","full_audio":"QUJD"}}`)
	rec := postSigned(handler, testSecret, now, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, listener.results)
}

func TestHandlerIgnoresUnknownEventType(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler, listener := newTestHandler(t, now)

	body := []byte(`{"type":"call_started","data":{"conversation_id":"conv_123"}}`)
	rec := postSigned(handler, testSecret, now, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, listener.results)
}
