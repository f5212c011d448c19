package webhook

import (
	"encoding/json"

	"speechwell-server/pkg/analysis"
	"speechwell-server/pkg/errors"
)

// Webhook event types delivered by the transcription provider.
const (
	EventPostCallTranscription = "post_call_transcription"
	EventPostCallAudio         = "post_call_audio"
)

// Payload is the top-level webhook envelope.
type Payload struct {
	Type           string      `json:"type"`
	EventTimestamp int64       `json:"event_timestamp,omitempty"`
	Data           PayloadData `json:"data"`
}

// PayloadData carries the conversation transcript and its metadata.
// Audio events reuse the same envelope with FullAudio set instead of
// a transcript.
type PayloadData struct {
	AgentID        string                     `json:"agent_id,omitempty"`
	ConversationID string                     `json:"conversation_id,omitempty"`
	Status         string                     `json:"status,omitempty"`
	UserID         string                     `json:"user_id,omitempty"`
	Transcript     []analysis.TranscriptTurn  `json:"transcript,omitempty"`
	Metadata       map[string]json.RawMessage `json:"metadata,omitempty"`
	Analysis       map[string]json.RawMessage `json:"analysis,omitempty"`
	FullAudio      string                     `json:"full_audio,omitempty"`
}

// ParsePayload decodes the raw webhook body. A body that is not valid
// JSON for the envelope yields ErrInvalidPayload.
func ParsePayload(body []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewInvalidPayload(err.Error())
	}
	return &payload, nil
}
