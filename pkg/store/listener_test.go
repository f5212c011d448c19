package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speechwell-server/pkg/analysis"
	"speechwell-server/pkg/webhook"
)

func TestResultListenerAppendsToStore(t *testing.T) {
	resultStore := NewResultStore(testLogger(), 10)
	listener := NewResultListener(resultStore)

	listener.OnSessionResult(webhook.SessionResult{
		ConversationID: "conv_123",
		AgentID:        "agent_1",
		Summary:        analysis.SessionSummary{TotalWords: 12, TotalDuration: 6.0},
	})

	require.Equal(t, 1, resultStore.Len())
	latest, ok := resultStore.Latest()
	require.True(t, ok)
	assert.Equal(t, "conv_123", latest.ConversationID)
	assert.Equal(t, 12, latest.Analysis.TotalWords)
}
