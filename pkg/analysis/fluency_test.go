package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFluencyScorerEmptyText(t *testing.T) {
	scorer := NewFluencyScorer()

	fluency := scorer.Assess("")
	assert.Equal(t, 0, fluency.FluencyDisruptions)
	assert.Equal(t, 100.0, fluency.OverallFluencyScore, "degenerate input is not penalized")
}

func TestFluencyScorerCleanSpeech(t *testing.T) {
	scorer := NewFluencyScorer()

	fluency := scorer.Assess("I had scrambled eggs and toast for breakfast")
	assert.Equal(t, 0, fluency.FluencyDisruptions)
	assert.Equal(t, 100.0, fluency.OverallFluencyScore)
}

func TestFluencyScorerMarkerCounts(t *testing.T) {
	scorer := NewFluencyScorer()

	fluency := scorer.Assess("um wait I said... I had - hmm toast")
	assert.Equal(t, 2, fluency.HesitationFrequency, "um and hmm")
	assert.Equal(t, 1, fluency.RevisionAttempts, "wait")
	// "..." matches both the ellipsis and double-period markers, plus " - "
	assert.Equal(t, 3, fluency.FlowInterruptions)
	assert.Equal(t, 6, fluency.FluencyDisruptions)
}

func TestFluencyScorerRatePenalty(t *testing.T) {
	scorer := NewFluencyScorer()

	// one disruption over four words: rate 0.25, penalty 50
	fluency := scorer.Assess("um it went fine")
	assert.Equal(t, 50.0, fluency.OverallFluencyScore)
}

func TestFluencyScorerFloor(t *testing.T) {
	scorer := NewFluencyScorer()

	// every token is a disruption: penalty caps at 80, score floors at 20
	fluency := scorer.Assess("um uh er ah hmm")
	assert.Equal(t, 20.0, fluency.OverallFluencyScore)
}

func TestFluencyScorerScoreRange(t *testing.T) {
	scorer := NewFluencyScorer()

	texts := []string{
		"um",
		"um uh um uh um uh",
		"wait... no... I mean...",
		"a long and perfectly fluent description of the morning",
	}

	for _, text := range texts {
		fluency := scorer.Assess(text)
		assert.GreaterOrEqual(t, fluency.OverallFluencyScore, 20.0, "text %q", text)
		assert.LessOrEqual(t, fluency.OverallFluencyScore, 100.0, "text %q", text)
	}
}
