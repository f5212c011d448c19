package webhook

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/analysis"
	"speechwell-server/pkg/metrics"
)

// SessionResult is the analyzed outcome of one conversation, handed
// to every registered listener.
type SessionResult struct {
	ConversationID string                  `json:"conversation_id"`
	AgentID        string                  `json:"agent_id,omitempty"`
	Status         string                  `json:"status,omitempty"`
	TurnCount      int                     `json:"turn_count"`
	ReceivedAt     time.Time               `json:"received_at"`
	Summary        analysis.SessionSummary `json:"summary"`
}

// ResultListener receives analyzed session results.
type ResultListener interface {
	// OnSessionResult is called after a transcript has been analyzed.
	OnSessionResult(result SessionResult)
}

// Processor runs the analysis pipeline over incoming transcripts and
// fans the results out to listeners.
type Processor struct {
	logger     *logrus.Entry
	estimator  *analysis.TimingEstimator
	analyzer   *analysis.SegmentAnalyzer
	aggregator *analysis.SessionAggregator
	listeners  []ResultListener
	mutex      sync.RWMutex
}

// NewProcessor creates a transcript processor. The challenge thresholds
// tune per-segment flagging; score weights must sum to one.
func NewProcessor(logger *logrus.Logger, thresholds analysis.ChallengeThresholds, weights analysis.ScoreWeights) (*Processor, error) {
	aggregator, err := analysis.NewSessionAggregator(logger, weights)
	if err != nil {
		return nil, err
	}

	return &Processor{
		logger:     logger.WithField("component", "processor"),
		estimator:  analysis.NewTimingEstimator(logger),
		analyzer:   analysis.NewSegmentAnalyzer(thresholds),
		aggregator: aggregator,
		listeners:  make([]ResultListener, 0),
	}, nil
}

// AddListener registers a new result listener
func (p *Processor) AddListener(listener ResultListener) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.listeners = append(p.listeners, listener)
	p.logger.Info("Added new result listener")
}

// RemoveListener removes a result listener
func (p *Processor) RemoveListener(listener ResultListener) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for i, l := range p.listeners {
		if l == listener {
			p.listeners[i] = p.listeners[len(p.listeners)-1]
			p.listeners = p.listeners[:len(p.listeners)-1]
			p.logger.Info("Removed result listener")
			return
		}
	}
}

// Process analyzes the transcript in the payload and publishes the
// result to all listeners. Transcripts with measured durations use them
// directly; otherwise segment timing is estimated from the text.
func (p *Processor) Process(payload *Payload) SessionResult {
	started := time.Now()
	turns := payload.Data.Transcript

	var segments []analysis.UserSegment
	if analysis.HasMeasuredDurations(turns) {
		segments = analysis.ExtractUserSegments(turns)
	} else {
		segments = p.estimator.Estimate(turns)
	}

	analyses := make([]analysis.SegmentAnalysis, 0, len(segments))
	for _, segment := range segments {
		analyses = append(analyses, p.analyzer.Analyze(segment))
	}

	summary := p.aggregator.Aggregate(analyses)

	result := SessionResult{
		ConversationID: payload.Data.ConversationID,
		AgentID:        payload.Data.AgentID,
		Status:         payload.Data.Status,
		TurnCount:      len(turns),
		ReceivedAt:     time.Now().UTC(),
		Summary:        summary,
	}

	outcome := "scored"
	if summary.Empty() {
		outcome = "empty"
	}
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.SessionsAnalyzed.WithLabelValues(outcome).Inc()
		metrics.SegmentsAnalyzed.Add(float64(len(analyses)))
		metrics.SessionWordsTotal.Add(float64(summary.TotalWords))
		if summary.Scores != nil {
			metrics.SessionCompositeScore.Observe(summary.Scores.Composite)
		}
		metrics.WebhookProcessingTime.Observe(time.Since(started).Seconds())
	}

	p.logger.WithFields(logrus.Fields{
		"conversation_id": result.ConversationID,
		"turn_count":      result.TurnCount,
		"segment_count":   len(analyses),
		"total_words":     summary.TotalWords,
		"outcome":         outcome,
	}).Info("Transcript analyzed")

	p.publish(result)
	return result
}

// publish notifies all listeners about a new session result
func (p *Processor) publish(result SessionResult) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	p.logger.WithFields(logrus.Fields{
		"conversation_id": result.ConversationID,
		"listener_count":  len(p.listeners),
	}).Debug("Publishing session result to listeners")

	for _, listener := range p.listeners {
		listener.OnSessionResult(result)
	}
}
