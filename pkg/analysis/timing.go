package analysis

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// Timing heuristic constants. The per-word baseline encodes an assumed
// 120 words/minute speaking rate.
const (
	secondsPerWord     = 0.5
	pauseMarkerSeconds = 1.0
	hesitationSeconds  = 0.5
	interTurnGap       = 2.0
)

// estimatorPauseMarkers are counted independently per marker, so a single
// punctuation run can contribute more than once. This mirrors the upstream
// heuristic and is intentionally not deduplicated.
var estimatorPauseMarkers = []string{"...", "..", " ... "}

// estimatorHesitations are tokens that add a fixed hesitation allowance.
var estimatorHesitations = map[string]bool{
	"um": true,
	"uh": true,
	"er": true,
	"ah": true,
}

// TimingEstimator synthesizes per-segment durations and cumulative
// timestamps from lexical cues. It is used only for transcripts where no
// user turn carries a measured duration; its output is a reproducible
// approximation, not ground truth.
type TimingEstimator struct {
	logger *logrus.Entry
}

// NewTimingEstimator creates a new timing estimator.
func NewTimingEstimator(logger *logrus.Logger) *TimingEstimator {
	return &TimingEstimator{
		logger: logger.WithField("component", "timing_estimator"),
	}
}

// Estimate walks the transcript in order and emits one UserSegment per
// user turn with a synthesized duration: 0.5s per word, plus 1.0s per
// pause marker and 0.5s per hesitation token, rounded to two decimals.
// The cumulative clock advances by the segment duration plus a fixed
// 2.0s inter-turn gap modeling the agent's reply; non-user turns are
// skipped and do not advance the clock.
func (e *TimingEstimator) Estimate(turns []TranscriptTurn) []UserSegment {
	segments := make([]UserSegment, 0, len(turns))
	cumulative := 0.0

	for _, turn := range turns {
		if turn.Role != RoleUser || turn.Message == "" {
			continue
		}

		duration := estimateDuration(turn.Message)

		segments = append(segments, UserSegment{
			Text:      turn.Message,
			Timestamp: cumulative,
			Duration:  duration,
			Estimated: true,
		})

		cumulative += duration + interTurnGap
	}

	e.logger.WithFields(logrus.Fields{
		"turns":    len(turns),
		"segments": len(segments),
	}).Debug("Estimated segment timings from lexical cues")

	return segments
}

// estimateDuration derives a synthetic duration for one utterance.
func estimateDuration(text string) float64 {
	tokens := strings.Fields(text)

	base := float64(len(tokens)) * secondsPerWord

	pauseTime := 0.0
	for _, marker := range estimatorPauseMarkers {
		pauseTime += float64(strings.Count(text, marker)) * pauseMarkerSeconds
	}

	hesitationTime := 0.0
	for _, token := range tokens {
		if estimatorHesitations[strings.ToLower(token)] {
			hesitationTime += hesitationSeconds
		}
	}

	return round2(base + pauseTime + hesitationTime)
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
