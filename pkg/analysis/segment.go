// Package analysis implements the speech analysis and scoring engine.
// It turns post-call transcript text (plus optional timing) into
// quantitative metrics, pattern counts, per-segment and session-level
// composite scores, and a clinical interpretation. Everything in this
// package is pure computation over its inputs and safe for concurrent use.
package analysis

import "strings"

// Transcript turn roles as delivered by the conversation platform.
const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// TranscriptTurn is a single turn of a post-call transcript as supplied
// by the upstream webhook payload. Timestamp is a millisecond offset into
// the call and Duration is in seconds; both are optional upstream.
type TranscriptTurn struct {
	Role      string  `json:"role"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}

// UserSegment is one continuous user utterance extracted from a transcript.
// Estimated is true when Duration was synthesized from lexical cues rather
// than measured upstream. Duration is never negative.
type UserSegment struct {
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
	Estimated bool    `json:"estimated"`
}

// ExtractUserSegments returns the user utterances of a transcript in order,
// carrying over the measured timestamp and duration of each turn. Turns
// without a message and non-user turns are skipped; an empty transcript
// yields an empty slice, which is a valid outcome rather than an error.
func ExtractUserSegments(turns []TranscriptTurn) []UserSegment {
	segments := make([]UserSegment, 0, len(turns))

	for _, turn := range turns {
		if turn.Role != RoleUser || turn.Message == "" {
			continue
		}

		segments = append(segments, UserSegment{
			Text:      turn.Message,
			Timestamp: turn.Timestamp,
			Duration:  turn.Duration,
			Estimated: false,
		})
	}

	return segments
}

// HasMeasuredDurations reports whether any user turn carries a positive
// duration. When false, callers fall back to the TimingEstimator.
func HasMeasuredDurations(turns []TranscriptTurn) bool {
	for _, turn := range turns {
		if turn.Role == RoleUser && turn.Duration > 0 {
			return true
		}
	}
	return false
}

// splitSentences splits text on periods, trims whitespace and drops
// empty pieces. Shared by the pattern detector and effectiveness scorer.
func splitSentences(text string) []string {
	parts := strings.Split(text, ".")
	sentences := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	return sentences
}
