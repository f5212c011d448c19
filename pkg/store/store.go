// Package store provides the bounded in-memory buffer of recent session
// analysis results. Results are appended once per completed session and
// evicted oldest-first when capacity is exceeded; the analysis engine
// itself never reads them back.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/analysis"
	"speechwell-server/pkg/metrics"
)

// DefaultCapacity bounds the buffer when no capacity is configured.
const DefaultCapacity = 10

// StoredResult is one retained session analysis.
type StoredResult struct {
	ID             string                  `json:"id"`
	ConversationID string                  `json:"conversation_id"`
	AgentID        string                  `json:"agent_id,omitempty"`
	Timestamp      time.Time               `json:"timestamp"`
	Analysis       analysis.SessionSummary `json:"analysis"`
}

// ResultStore keeps the most recent N results in arrival order.
// It is safe for concurrent use.
type ResultStore struct {
	logger   *logrus.Entry
	capacity int

	mutex   sync.RWMutex
	results []StoredResult
}

// NewResultStore creates a result store with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewResultStore(logger *logrus.Logger, capacity int) *ResultStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &ResultStore{
		logger:   logger.WithField("component", "result_store"),
		capacity: capacity,
		results:  make([]StoredResult, 0, capacity),
	}
}

// Append records a completed session analysis, evicting the oldest entry
// when the buffer is full, and returns the stored record.
func (s *ResultStore) Append(conversationID, agentID string, summary analysis.SessionSummary) StoredResult {
	result := StoredResult{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		AgentID:        agentID,
		Timestamp:      time.Now().UTC(),
		Analysis:       summary,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.results = append(s.results, result)
	if len(s.results) > s.capacity {
		evicted := len(s.results) - s.capacity
		s.results = append(s.results[:0:0], s.results[evicted:]...)
		s.logger.WithFields(logrus.Fields{
			"evicted":  evicted,
			"capacity": s.capacity,
		}).Debug("Evicted oldest stored results")

		if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
			metrics.ResultEvictions.Add(float64(evicted))
		}
	}

	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.ResultsStored.Set(float64(len(s.results)))
	}

	return result
}

// All returns a copy of every retained result, oldest first.
func (s *ResultStore) All() []StoredResult {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	results := make([]StoredResult, len(s.results))
	copy(results, s.results)
	return results
}

// Latest returns the most recently appended result, or false when the
// store is empty.
func (s *ResultStore) Latest() (StoredResult, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.results) == 0 {
		return StoredResult{}, false
	}
	return s.results[len(s.results)-1], true
}

// Len returns the number of retained results.
func (s *ResultStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.results)
}

// Capacity returns the configured bound.
func (s *ResultStore) Capacity() int {
	return s.capacity
}

// Clear removes all retained results (utility method for testing).
func (s *ResultStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.results = s.results[:0]
}
