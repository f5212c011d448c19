package analysis

import (
	"math"
	"strings"
)

// CommunicationEffectiveness captures sentence-structure statistics and
// the derived 0-100 clarity score for one utterance.
type CommunicationEffectiveness struct {
	SentenceCompletionRate float64 `json:"sentence_completion_rate"`
	AverageSentenceLength  float64 `json:"average_sentence_length"`
	PhraseBreaks           int     `json:"phrase_breaks"`
	MessageClarityScore    float64 `json:"message_clarity_score"`
}

// Clarity penalty rules. The score starts at 100 and is only ever
// reduced, floored at zero.
const (
	completionRateThreshold  = 70.0
	completionRatePenalty    = 20.0
	sentenceLengthThreshold  = 3.0
	sentenceLengthPenalty    = 15.0
	phraseBreakRateThreshold = 0.3
	phraseBreakPenalty       = 10.0
	completeSentenceMinWords = 3
)

// EffectivenessScorer converts sentence-structure statistics into a
// clarity score and a completion percentage.
type EffectivenessScorer struct{}

// NewEffectivenessScorer creates a new effectiveness scorer.
func NewEffectivenessScorer() *EffectivenessScorer {
	return &EffectivenessScorer{}
}

// Assess splits the text into sentences and scores structural clarity.
// A sentence is complete when it has at least three tokens and does not
// trail off with an ellipsis. With no sentences the completion and
// length checks are skipped, but the phrase-break check still applies.
func (s *EffectivenessScorer) Assess(text string) CommunicationEffectiveness {
	eff := CommunicationEffectiveness{MessageClarityScore: 100}

	sentences := splitSentences(text)
	wordCount := len(strings.Fields(text))

	if len(sentences) > 0 {
		totalTokens := 0
		complete := 0
		for _, sentence := range sentences {
			tokens := len(strings.Fields(sentence))
			totalTokens += tokens
			if tokens >= completeSentenceMinWords && !strings.HasSuffix(sentence, "...") {
				complete++
			}
		}

		eff.AverageSentenceLength = float64(totalTokens) / float64(len(sentences))
		eff.SentenceCompletionRate = 100 * float64(complete) / float64(len(sentences))

		if eff.SentenceCompletionRate < completionRateThreshold {
			eff.MessageClarityScore -= completionRatePenalty
		}
		if eff.AverageSentenceLength < sentenceLengthThreshold {
			eff.MessageClarityScore -= sentenceLengthPenalty
		}
	}

	eff.PhraseBreaks = strings.Count(text, ",") + strings.Count(text, "...") + strings.Count(text, "..")

	if float64(eff.PhraseBreaks) > phraseBreakRateThreshold*float64(wordCount) {
		eff.MessageClarityScore -= phraseBreakPenalty
	}

	eff.MessageClarityScore = math.Max(0, eff.MessageClarityScore)

	return eff
}
