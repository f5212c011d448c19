package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/errors"
	"speechwell-server/pkg/metrics"
)

// Handler accepts provider webhook deliveries, verifies their
// signature, and routes transcription events into the processor.
type Handler struct {
	logger    *logrus.Entry
	verifier  *Verifier
	processor *Processor
}

// NewHandler creates the webhook HTTP handler.
func NewHandler(logger *logrus.Logger, verifier *Verifier, processor *Processor) *Handler {
	return &Handler{
		logger:    logger.WithField("component", "webhook_handler"),
		verifier:  verifier,
		processor: processor,
	}
}

// ServeHTTP implements http.Handler for POST /webhook.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read webhook body")
		h.countRequest("unknown", "read_error")
		errors.WriteError(w, errors.NewInvalidPayload("unreadable request body"))
		return
	}
	h.observePayloadSize(len(body))

	if err := h.verifier.Verify(r.Header.Get(SignatureHeader), body); err != nil {
		h.logger.WithError(err).Warn("Webhook signature verification failed")
		h.countRequest("unknown", "unauthorized")
		h.countSignatureFailure(err)
		errors.WriteError(w, err)
		return
	}

	payload, err := ParsePayload(body)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to decode webhook payload")
		h.countRequest("unknown", "bad_payload")
		errors.WriteError(w, err)
		return
	}

	switch payload.Type {
	case EventPostCallAudio:
		// Audio deliveries are acknowledged but not analyzed.
		h.logger.WithFields(logrus.Fields{
			"conversation_id": payload.Data.ConversationID,
			"audio_bytes":     len(payload.Data.FullAudio),
		}).Info("Received post-call audio event")
		h.countRequest(payload.Type, "ok")

	case EventPostCallTranscription:
		h.processor.Process(payload)
		h.countRequest(payload.Type, "ok")

	default:
		h.logger.WithField("type", payload.Type).Info("Ignoring unrecognized webhook event type")
		h.countRequest(payload.Type, "ignored")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "received"})
}

func (h *Handler) countRequest(eventType, status string) {
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	}
}

func (h *Handler) countSignatureFailure(err error) {
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		reason := "digest_mismatch"
		if errors.IsErrorType(err, errors.ErrStaleSignature) {
			reason = "stale_timestamp"
		}
		metrics.WebhookSignatureFailures.WithLabelValues(reason).Inc()
	}
}

func (h *Handler) observePayloadSize(size int) {
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.WebhookPayloadBytes.Observe(float64(size))
	}
}
