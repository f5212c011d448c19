package analysis

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// pausePatterns match pause indicators in speech text. The patterns
// overlap on purpose: a single ellipsis run is matched by both the
// multi-period and the spaced-period pattern, so one run can count more
// than once. This reproduces the upstream behavior.
var pausePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.{2,}`),        // multiple periods
	regexp.MustCompile(`…`),             // ellipsis rune
	regexp.MustCompile(`  +`),           // multiple spaces
	regexp.MustCompile(`\s*\.\s*\.\s*\.`), // spaced periods
}

// Fixed thresholds for communication challenge flags.
const (
	slowSpeechRateWPM      = 100.0 // normal conversational rate is 120-160 WPM
	frequentPauseWordRatio = 0.15
	shortResponseWords     = 5
	breakdownClarityScore  = 60.0
)

// ChallengeThresholds are the configurable challenge cutoffs. The filler
// and correction thresholds have no established clinical calibration, so
// they are injected rather than hard-coded.
type ChallengeThresholds struct {
	// WordFindingFillers flags word-finding difficulty when the filler
	// count exceeds it.
	WordFindingFillers int
	// FrequentCorrections flags frequent self-correction when the
	// correction count exceeds it.
	FrequentCorrections int
}

// DefaultChallengeThresholds returns the stock thresholds.
func DefaultChallengeThresholds() ChallengeThresholds {
	return ChallengeThresholds{
		WordFindingFillers:  2,
		FrequentCorrections: 1,
	}
}

// CommunicationChallenges flags per-segment indicators of impaired
// communication derived from fixed thresholds over the segment metrics.
type CommunicationChallenges struct {
	SlowSpeechRate          bool `json:"slow_speech_rate"`
	FrequentPauses          bool `json:"frequent_pauses"`
	ShortResponses          bool `json:"short_responses"`
	WordFindingDifficulty   bool `json:"word_finding_difficulty"`
	IncompleteThoughts      bool `json:"incomplete_thoughts"`
	FrequentSelfCorrections bool `json:"frequent_self_corrections"`
	CommunicationBreakdown  bool `json:"communication_breakdown"`
}

// Any reports whether at least one challenge flag is set.
func (c CommunicationChallenges) Any() bool {
	return c.SlowSpeechRate || c.FrequentPauses || c.ShortResponses ||
		c.WordFindingDifficulty || c.IncompleteThoughts ||
		c.FrequentSelfCorrections || c.CommunicationBreakdown
}

// Names returns the set flags as snake_case names, for logs and reports.
func (c CommunicationChallenges) Names() []string {
	var names []string
	if c.SlowSpeechRate {
		names = append(names, "slow_speech_rate")
	}
	if c.FrequentPauses {
		names = append(names, "frequent_pauses")
	}
	if c.ShortResponses {
		names = append(names, "short_responses")
	}
	if c.WordFindingDifficulty {
		names = append(names, "word_finding_difficulty")
	}
	if c.IncompleteThoughts {
		names = append(names, "incomplete_thoughts")
	}
	if c.FrequentSelfCorrections {
		names = append(names, "frequent_self_corrections")
	}
	if c.CommunicationBreakdown {
		names = append(names, "communication_breakdown")
	}
	return names
}

// SegmentAnalysis is the full analysis record for one user utterance.
// It is created once per segment and never mutated downstream.
type SegmentAnalysis struct {
	Text            string                     `json:"text"`
	DurationSeconds float64                    `json:"duration_seconds"`
	Estimated       bool                       `json:"estimated"`
	WordCount       int                        `json:"word_count"`
	CharacterCount  int                        `json:"character_count"`
	SpeechRateWPM   float64                    `json:"speech_rate_wpm"`
	PauseCount      int                        `json:"pause_count"`
	SpeechDensity   float64                    `json:"speech_density"`
	AvgWordLength   float64                    `json:"avg_word_length"`
	Patterns        LanguagePatterns           `json:"language_patterns"`
	Effectiveness   CommunicationEffectiveness `json:"communication_effectiveness"`
	Fluency         VerbalFluency              `json:"verbal_fluency"`
	Challenges      CommunicationChallenges    `json:"communication_challenges"`
}

// SegmentAnalyzer composes the pattern detector and the two scorers into
// a full per-segment analysis.
type SegmentAnalyzer struct {
	patterns      *PatternDetector
	effectiveness *EffectivenessScorer
	fluency       *FluencyScorer
	thresholds    ChallengeThresholds
}

// NewSegmentAnalyzer creates a segment analyzer with the given challenge
// thresholds.
func NewSegmentAnalyzer(thresholds ChallengeThresholds) *SegmentAnalyzer {
	return &SegmentAnalyzer{
		patterns:      NewPatternDetector(),
		effectiveness: NewEffectivenessScorer(),
		fluency:       NewFluencyScorer(),
		thresholds:    thresholds,
	}
}

// Analyze computes the base metrics for one segment, folds in the
// pattern, effectiveness and fluency records unchanged, and derives the
// challenge flags. The result is deterministic for identical input.
func (a *SegmentAnalyzer) Analyze(segment UserSegment) SegmentAnalysis {
	text := segment.Text
	duration := segment.Duration

	wordCount := len(strings.Fields(text))
	charCount := utf8.RuneCountInString(strings.ReplaceAll(text, " ", ""))

	speechRate := 0.0
	if duration > 0 {
		speechRate = round2(float64(wordCount) / duration * 60)
	}

	result := SegmentAnalysis{
		Text:            text,
		DurationSeconds: duration,
		Estimated:       segment.Estimated,
		WordCount:       wordCount,
		CharacterCount:  charCount,
		SpeechRateWPM:   speechRate,
		PauseCount:      countPauses(text),
		SpeechDensity:   float64(wordCount) / math.Max(duration, 1),
		AvgWordLength:   float64(charCount) / math.Max(float64(wordCount), 1),
		Patterns:        a.patterns.Detect(text),
		Effectiveness:   a.effectiveness.Assess(text),
		Fluency:         a.fluency.Assess(text),
	}

	result.Challenges = CommunicationChallenges{
		SlowSpeechRate:          speechRate < slowSpeechRateWPM && speechRate > 0,
		FrequentPauses:          float64(result.PauseCount) > frequentPauseWordRatio*float64(wordCount),
		ShortResponses:          wordCount < shortResponseWords,
		WordFindingDifficulty:   result.Patterns.FillerWords > a.thresholds.WordFindingFillers,
		IncompleteThoughts:      result.Patterns.IncompleteThoughts > 0,
		FrequentSelfCorrections: result.Patterns.SelfCorrections > a.thresholds.FrequentCorrections,
		CommunicationBreakdown:  result.Effectiveness.MessageClarityScore < breakdownClarityScore,
	}

	return result
}

// countPauses sums the matches of every pause pattern over the text.
func countPauses(text string) int {
	count := 0
	for _, pattern := range pausePatterns {
		count += len(pattern.FindAllString(text, -1))
	}
	return count
}
