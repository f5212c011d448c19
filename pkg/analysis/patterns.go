package analysis

import "strings"

// LanguagePatterns holds per-utterance counts of lexical markers. All
// counts are non-negative and derived from the text alone.
type LanguagePatterns struct {
	WordRepetitions       int `json:"word_repetitions"`
	SelfCorrections       int `json:"self_corrections"`
	IncompleteThoughts    int `json:"incomplete_thoughts"`
	FillerWords           int `json:"filler_words"`
	ComplexWordsAttempted int `json:"complex_words_attempted"`
	SentenceFragments     int `json:"sentence_fragments"`
}

// markerSet is a table-driven rule: a fixed list of marker phrases counted
// case-insensitively as substrings over the full text. Overlapping
// occurrences are not excluded.
type markerSet []string

// count sums the occurrences of every marker in the lower-cased text.
func (m markerSet) count(lowerText string) int {
	total := 0
	for _, marker := range m {
		total += strings.Count(lowerText, marker)
	}
	return total
}

// Marker tables. Swapping a list changes detection without touching any
// scoring logic.
var (
	selfCorrectionMarkers = markerSet{"i mean", "no", "actually", "sorry", "let me", "or rather"}
	fillerMarkers         = markerSet{"um", "uh", "er", "ah", "like", "you know", "well"}
	hesitationMarkers     = markerSet{"um", "uh", "er", "ah", "hmm"}
	revisionMarkers       = markerSet{"i mean", "no", "actually", "wait", "sorry", "let me try"}
)

// Token length thresholds for the structural rules.
const (
	repetitionMinTokenLen = 2 // repeated tokens must be longer than this
	complexWordMinLen     = 6 // tokens longer than this count as complex
	fragmentMaxTokens     = 3 // sentences with fewer tokens are fragments
)

// PatternDetector scans a single utterance for lexical markers of
// repetition, self-correction, incompleteness, fillers and fragmentation.
type PatternDetector struct{}

// NewPatternDetector creates a new pattern detector.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{}
}

// Detect computes all pattern counts for the given text. Each rule is
// independently evaluated over the full text; empty text yields an
// all-zero record.
func (d *PatternDetector) Detect(text string) LanguagePatterns {
	patterns := LanguagePatterns{}
	if strings.TrimSpace(text) == "" {
		return patterns
	}

	lower := strings.ToLower(text)
	tokens := strings.Fields(text)

	// Adjacent identical tokens, case-sensitive on the raw tokens.
	for i := 1; i < len(tokens); i++ {
		if len(tokens[i]) > repetitionMinTokenLen && tokens[i] == tokens[i-1] {
			patterns.WordRepetitions++
		}
	}

	patterns.SelfCorrections = selfCorrectionMarkers.count(lower)
	patterns.IncompleteThoughts = strings.Count(text, "...")
	patterns.FillerWords = fillerMarkers.count(lower)

	for _, token := range tokens {
		if len(token) > complexWordMinLen {
			patterns.ComplexWordsAttempted++
		}
	}

	for _, sentence := range splitSentences(text) {
		if len(strings.Fields(sentence)) < fragmentMaxTokens {
			patterns.SentenceFragments++
		}
	}

	return patterns
}
