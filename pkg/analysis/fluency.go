package analysis

import (
	"math"
	"strings"
)

// VerbalFluency holds disruption marker counts and the derived fluency
// score for one utterance. The score lives in [20, 100] for non-empty
// text: any coherent utterance retains a baseline fluency credit.
type VerbalFluency struct {
	HesitationFrequency int     `json:"hesitation_frequency"`
	RevisionAttempts    int     `json:"revision_attempts"`
	FlowInterruptions   int     `json:"flow_interruptions"`
	FluencyDisruptions  int     `json:"fluency_disruptions"`
	OverallFluencyScore float64 `json:"overall_fluency_score"`
}

const (
	fluencyPenaltyCap   = 80.0
	fluencyPenaltyScale = 200.0
	fluencyScoreFloor   = 20.0
)

// FluencyScorer converts hesitation, revision and interruption marker
// counts into a rate-penalized fluency score.
type FluencyScorer struct{}

// NewFluencyScorer creates a new fluency scorer.
func NewFluencyScorer() *FluencyScorer {
	return &FluencyScorer{}
}

// Assess counts disruption markers and applies a rate-based penalty:
// min(80, disruptions/words * 200) off a 100 baseline, floored at 20.
// Degenerate input with no words keeps the default score of 100.
func (s *FluencyScorer) Assess(text string) VerbalFluency {
	lower := strings.ToLower(text)

	fluency := VerbalFluency{
		HesitationFrequency: hesitationMarkers.count(lower),
		RevisionAttempts:    revisionMarkers.count(lower),
		FlowInterruptions:   strings.Count(text, "...") + strings.Count(text, "..") + strings.Count(text, " - "),
		OverallFluencyScore: 100,
	}
	fluency.FluencyDisruptions = fluency.HesitationFrequency + fluency.RevisionAttempts + fluency.FlowInterruptions

	wordCount := len(strings.Fields(text))
	if wordCount > 0 {
		disruptionRate := float64(fluency.FluencyDisruptions) / float64(wordCount)
		penalty := math.Min(fluencyPenaltyCap, disruptionRate*fluencyPenaltyScale)
		fluency.OverallFluencyScore = math.Max(fluencyScoreFloor, 100-penalty)
	}

	return fluency
}
