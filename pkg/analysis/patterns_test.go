package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternDetectorEmptyText(t *testing.T) {
	detector := NewPatternDetector()

	for _, text := range []string{"", "   ", "\t\n"} {
		patterns := detector.Detect(text)
		assert.Equal(t, LanguagePatterns{}, patterns, "blank input should yield an all-zero record")
	}
}

func TestPatternDetectorWordRepetitions(t *testing.T) {
	detector := NewPatternDetector()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"adjacent repeat", "the cat cat sat", 1},
		{"short tokens ignored", "I I went to to bed", 0},
		{"case sensitive", "Cat cat sat", 0},
		{"double repeat", "went went went home", 2},
		{"no repeats", "a clean fluent sentence", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.text).WordRepetitions)
		})
	}
}

func TestPatternDetectorSelfCorrections(t *testing.T) {
	detector := NewPatternDetector()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"single marker", "Actually I went home", 1},
		{"multiple markers", "No, I mean, sorry, let me start over", 4},
		{"case insensitive", "ACTUALLY it was fine", 1},
		{"substring counting", "I know the answer", 1}, // "no" inside "know"
		{"none", "It was a great day", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.text).SelfCorrections)
		})
	}
}

func TestPatternDetectorIncompleteThoughts(t *testing.T) {
	detector := NewPatternDetector()

	assert.Equal(t, 2, detector.Detect("wait... what... ").IncompleteThoughts)
	assert.Equal(t, 0, detector.Detect("a full sentence.").IncompleteThoughts)
}

func TestPatternDetectorFillerWords(t *testing.T) {
	detector := NewPatternDetector()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"two fillers", "um it was good you know", 2},
		{"well and like", "well it was like that", 2},
		{"case insensitive", "Um... UM I forgot", 2},
		{"clean", "it was good", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.text).FillerWords)
		})
	}
}

func TestPatternDetectorComplexWords(t *testing.T) {
	detector := NewPatternDetector()

	patterns := detector.Detect("an extraordinary breakfast was eaten")
	// "extraordinary" and "breakfast" exceed six characters.
	assert.Equal(t, 2, patterns.ComplexWordsAttempted)
}

func TestPatternDetectorSentenceFragments(t *testing.T) {
	detector := NewPatternDetector()

	patterns := detector.Detect("Yes. I went to the store. Ok then.")
	assert.Equal(t, 2, patterns.SentenceFragments)
}

func TestPatternDetectorCountsNonNegativeOnRepeatedText(t *testing.T) {
	detector := NewPatternDetector()

	base := "Good... morning um I mean well. Yes. "
	long := strings.Repeat(base, 50)

	single := detector.Detect(base)
	repeated := detector.Detect(long)

	for _, counts := range []LanguagePatterns{single, repeated} {
		assert.GreaterOrEqual(t, counts.WordRepetitions, 0)
		assert.GreaterOrEqual(t, counts.SelfCorrections, 0)
		assert.GreaterOrEqual(t, counts.IncompleteThoughts, 0)
		assert.GreaterOrEqual(t, counts.FillerWords, 0)
		assert.GreaterOrEqual(t, counts.ComplexWordsAttempted, 0)
		assert.GreaterOrEqual(t, counts.SentenceFragments, 0)
	}

	// Marker rules scale with the text, repeated input stays valid.
	assert.Equal(t, single.IncompleteThoughts*50, repeated.IncompleteThoughts)
	assert.Equal(t, single.FillerWords*50, repeated.FillerWords)
}
