package analysis

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ScoreWeights are the weights of the session composite score. They must
// sum to exactly 1.0.
type ScoreWeights struct {
	Clarity    float64
	Fluency    float64
	Completion float64
	Repetition float64
	Correction float64
	Filler     float64
}

// DefaultScoreWeights returns the stock composite weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Clarity:    0.25,
		Fluency:    0.25,
		Completion: 0.20,
		Repetition: 0.10,
		Correction: 0.10,
		Filler:     0.10,
	}
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.Clarity + w.Fluency + w.Completion + w.Repetition + w.Correction + w.Filler
}

// Per-segment control score penalties, each floored at zero before the
// session average is taken.
const (
	repetitionPenaltyPerHit = 20.0
	correctionPenaltyPerHit = 15.0
	fillerPenaltyPerHit     = 10.0
)

// Composite score interpretation tiers: four mutually exclusive, ordered
// bands over [0, 100].
const (
	tierExcellentMin = 80.0
	tierGoodMin      = 60.0
	tierModerateMin  = 40.0
)

// Recommendation rule thresholds, each checked against its own session
// score.
const (
	recommendClarityBelow    = 70.0
	recommendFluencyBelow    = 70.0
	recommendCompletionBelow = 70.0
	recommendFillerBelow     = 80.0
	recommendRepetitionBelow = 80.0
	recommendCorrectionBelow = 80.0
)

// SessionScores are the six averaged session scores plus the weighted
// composite, all in [0, 100].
type SessionScores struct {
	MessageClarity      float64 `json:"message_clarity"`
	VerbalFluency       float64 `json:"verbal_fluency"`
	SentenceCompletion  float64 `json:"sentence_completion"`
	RepetitionControl   float64 `json:"repetition_control"`
	CorrectionFrequency float64 `json:"correction_frequency"`
	FillerControl       float64 `json:"filler_control"`
	Composite           float64 `json:"composite"`
}

// SessionSummary is the per-conversation aggregate. It is write-once:
// created by Aggregate and then only read. Scores is nil for an empty
// session (no segments or zero total duration), in which case no
// interpretation or recommendations are produced.
type SessionSummary struct {
	TotalWords           int               `json:"total_words"`
	TotalDuration        float64           `json:"total_duration"`
	TotalPauses          int               `json:"total_pauses"`
	OverallSpeechRateWPM float64           `json:"overall_speech_rate_wpm,omitempty"`
	PauseRate            float64           `json:"pause_rate,omitempty"`
	Segments             []SegmentAnalysis `json:"segments"`
	Scores               *SessionScores    `json:"scores,omitempty"`
	Interpretation       string            `json:"interpretation,omitempty"`
	Recommendations      []string          `json:"recommendations,omitempty"`
}

// Empty reports whether the session produced no scorable speech. Callers
// must check this before consuming session-level scores.
func (s *SessionSummary) Empty() bool {
	return s.Scores == nil
}

// SessionAggregator folds per-segment analyses into session totals,
// averaged scores, a weighted composite and a clinical interpretation.
type SessionAggregator struct {
	logger  *logrus.Entry
	weights ScoreWeights
}

// NewSessionAggregator creates a session aggregator, validating that the
// composite weights sum to exactly 1.0.
func NewSessionAggregator(logger *logrus.Logger, weights ScoreWeights) (*SessionAggregator, error) {
	if math.Abs(weights.Sum()-1.0) > 1e-9 {
		return nil, fmt.Errorf("composite score weights must sum to 1.0, got %v", weights.Sum())
	}

	return &SessionAggregator{
		logger:  logger.WithField("component", "session_aggregator"),
		weights: weights,
	}, nil
}

// Aggregate totals the segments and, when there is any speaking time,
// computes the session scores, composite and interpretation. With zero
// total duration it short-circuits to the distinct empty-session outcome:
// totals only, nil Scores, no interpretation.
func (a *SessionAggregator) Aggregate(segments []SegmentAnalysis) SessionSummary {
	summary := SessionSummary{Segments: segments}

	for _, seg := range segments {
		summary.TotalWords += seg.WordCount
		summary.TotalDuration += seg.DurationSeconds
		summary.TotalPauses += seg.PauseCount
	}

	if summary.TotalDuration <= 0 {
		a.logger.WithField("segments", len(segments)).Debug("Empty session, skipping score aggregation")
		return summary
	}

	summary.OverallSpeechRateWPM = float64(summary.TotalWords) / summary.TotalDuration * 60
	summary.PauseRate = float64(summary.TotalPauses) / math.Max(float64(summary.TotalWords), 1)

	n := float64(len(segments))
	scores := &SessionScores{}
	for _, seg := range segments {
		scores.MessageClarity += seg.Effectiveness.MessageClarityScore
		scores.VerbalFluency += seg.Fluency.OverallFluencyScore
		scores.SentenceCompletion += seg.Effectiveness.SentenceCompletionRate
		scores.RepetitionControl += math.Max(0, 100-float64(seg.Patterns.WordRepetitions)*repetitionPenaltyPerHit)
		scores.CorrectionFrequency += math.Max(0, 100-float64(seg.Patterns.SelfCorrections)*correctionPenaltyPerHit)
		scores.FillerControl += math.Max(0, 100-float64(seg.Patterns.FillerWords)*fillerPenaltyPerHit)
	}
	scores.MessageClarity /= n
	scores.VerbalFluency /= n
	scores.SentenceCompletion /= n
	scores.RepetitionControl /= n
	scores.CorrectionFrequency /= n
	scores.FillerControl /= n

	scores.Composite = scores.MessageClarity*a.weights.Clarity +
		scores.VerbalFluency*a.weights.Fluency +
		scores.SentenceCompletion*a.weights.Completion +
		scores.RepetitionControl*a.weights.Repetition +
		scores.CorrectionFrequency*a.weights.Correction +
		scores.FillerControl*a.weights.Filler

	summary.Scores = scores
	summary.Interpretation = interpretComposite(scores.Composite)
	summary.Recommendations = recommend(scores)

	a.logger.WithFields(logrus.Fields{
		"segments":       len(segments),
		"total_words":    summary.TotalWords,
		"total_duration": summary.TotalDuration,
		"composite":      scores.Composite,
	}).Debug("Aggregated session scores")

	return summary
}

// interpretComposite maps a composite score onto its clinical tier.
func interpretComposite(composite float64) string {
	switch {
	case composite >= tierExcellentMin:
		return "Excellent communication - speech patterns within normal range"
	case composite >= tierGoodMin:
		return "Good communication with minor challenges"
	case composite >= tierModerateMin:
		return "Moderate communication challenges present"
	default:
		return "Significant communication challenges - additional support needed"
	}
}

// recommend applies the independent per-score rules and appends one
// closing remark keyed to the composite tier.
func recommend(scores *SessionScores) []string {
	var recs []string

	if scores.MessageClarity < recommendClarityBelow {
		recs = append(recs, "Practice structuring thoughts into complete, clear sentences")
	}
	if scores.VerbalFluency < recommendFluencyBelow {
		recs = append(recs, "Work on pacing exercises to reduce hesitations and interruptions")
	}
	if scores.SentenceCompletion < recommendCompletionBelow {
		recs = append(recs, "Focus on finishing each thought before starting the next")
	}
	if scores.FillerControl < recommendFillerBelow {
		recs = append(recs, "Replace filler words with brief silent pauses")
	}
	if scores.RepetitionControl < recommendRepetitionBelow {
		recs = append(recs, "Practice word-retrieval exercises to reduce repetitions")
	}
	if scores.CorrectionFrequency < recommendCorrectionBelow {
		recs = append(recs, "Build confidence in first phrasings to reduce self-corrections")
	}

	switch {
	case scores.Composite >= tierExcellentMin:
		recs = append(recs, "Maintain current communication habits with regular practice")
	case scores.Composite >= tierGoodMin:
		recs = append(recs, "Continue regular practice sessions to address the minor challenges")
	case scores.Composite >= tierModerateMin:
		recs = append(recs, "Consider increasing the frequency of guided speech practice")
	default:
		recs = append(recs, "A consultation with a speech-language pathologist is recommended")
	}

	return recs
}
