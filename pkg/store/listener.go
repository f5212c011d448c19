package store

import (
	"speechwell-server/pkg/webhook"
)

// ResultListener persists analyzed sessions into the bounded store.
type ResultListener struct {
	store *ResultStore
}

// NewResultListener creates a listener backed by the given store.
func NewResultListener(store *ResultStore) *ResultListener {
	return &ResultListener{store: store}
}

// OnSessionResult implements the webhook.ResultListener interface
func (l *ResultListener) OnSessionResult(result webhook.SessionResult) {
	l.store.Append(result.ConversationID, result.AgentID, result.Summary)
}
