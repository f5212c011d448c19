package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAnalyzer() *SegmentAnalyzer {
	return NewSegmentAnalyzer(DefaultChallengeThresholds())
}

func TestSegmentAnalyzerBreakfastScenario(t *testing.T) {
	analyzer := newTestAnalyzer()

	segment := UserSegment{
		Text:     "I had... scrambled eggs... and... toast.",
		Duration: 6.3,
	}

	result := analyzer.Analyze(segment)

	assert.Equal(t, 6, result.WordCount)
	assert.InDelta(t, 57.14, result.SpeechRateWPM, 1e-9)
	assert.GreaterOrEqual(t, result.PauseCount, 3, "three ellipses must register as pauses")
	assert.True(t, result.Challenges.SlowSpeechRate)
	assert.True(t, result.Challenges.IncompleteThoughts)
	assert.True(t, result.Challenges.FrequentPauses)
}

func TestSegmentAnalyzerBaseMetrics(t *testing.T) {
	analyzer := newTestAnalyzer()

	result := analyzer.Analyze(UserSegment{Text: "Good morning everyone here", Duration: 2.0})

	assert.Equal(t, 4, result.WordCount)
	assert.Equal(t, 23, result.CharacterCount)
	assert.InDelta(t, 120.0, result.SpeechRateWPM, 1e-9)
	assert.Equal(t, 0, result.PauseCount)
	assert.InDelta(t, 2.0, result.SpeechDensity, 1e-9)
	assert.InDelta(t, 5.75, result.AvgWordLength, 1e-9)
	assert.False(t, result.Challenges.SlowSpeechRate, "120 WPM is not slow")
}

func TestSegmentAnalyzerZeroDuration(t *testing.T) {
	analyzer := newTestAnalyzer()

	result := analyzer.Analyze(UserSegment{Text: "Hello there everyone today friends", Duration: 0})

	assert.Equal(t, 0.0, result.SpeechRateWPM, "zero duration yields zero rate, not a division error")
	assert.False(t, result.Challenges.SlowSpeechRate, "a zero rate is degenerate, not slow")
	// density divides by max(duration, 1)
	assert.InDelta(t, 5.0, result.SpeechDensity, 1e-9)
}

func TestSegmentAnalyzerEmptyText(t *testing.T) {
	analyzer := newTestAnalyzer()

	result := analyzer.Analyze(UserSegment{Text: "", Duration: 1.0})

	assert.Equal(t, 0, result.WordCount)
	assert.Equal(t, 0, result.CharacterCount)
	assert.Equal(t, 0.0, result.AvgWordLength)
	assert.Equal(t, LanguagePatterns{}, result.Patterns)
	assert.True(t, result.Challenges.ShortResponses)
}

func TestSegmentAnalyzerPauseDoubleCounting(t *testing.T) {
	analyzer := newTestAnalyzer()

	// A single ellipsis run matches both the multi-period and the
	// spaced-period patterns. The double count is intentional.
	result := analyzer.Analyze(UserSegment{Text: "yes... ok", Duration: 1.0})
	assert.Equal(t, 2, result.PauseCount)

	// The ellipsis rune and multiple spaces are pause indicators too.
	result = analyzer.Analyze(UserSegment{Text: "yes…  ok", Duration: 1.0})
	assert.Equal(t, 2, result.PauseCount)
}

func TestSegmentAnalyzerChallengeFlags(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, c CommunicationChallenges)
	}{
		{
			name: "short response",
			text: "Yes fine",
			check: func(t *testing.T, c CommunicationChallenges) {
				assert.True(t, c.ShortResponses)
			},
		},
		{
			name: "word finding difficulty",
			text: "um uh it was um something about the morning meal stuff",
			check: func(t *testing.T, c CommunicationChallenges) {
				assert.True(t, c.WordFindingDifficulty, "more than two fillers")
			},
		},
		{
			name: "frequent self corrections",
			text: "Actually no it was toast I ate for the morning meal",
			check: func(t *testing.T, c CommunicationChallenges) {
				assert.True(t, c.FrequentSelfCorrections, "more than one correction marker")
			},
		},
		{
			name: "fluent speech raises nothing",
			text: "I woke up at seven thirty and then I had breakfast with my family downstairs.",
			check: func(t *testing.T, c CommunicationChallenges) {
				assert.False(t, c.Any())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// generous duration keeps the speech rate above 100 WPM
			result := analyzer.Analyze(UserSegment{Text: tt.text, Duration: 0.5})
			tt.check(t, result.Challenges)
		})
	}
}

func TestSegmentAnalyzerConfigurableThresholds(t *testing.T) {
	strict := NewSegmentAnalyzer(ChallengeThresholds{WordFindingFillers: 0, FrequentCorrections: 0})
	lenient := NewSegmentAnalyzer(ChallengeThresholds{WordFindingFillers: 10, FrequentCorrections: 10})

	segment := UserSegment{Text: "um actually it was fine", Duration: 1.0}

	assert.True(t, strict.Analyze(segment).Challenges.WordFindingDifficulty)
	assert.True(t, strict.Analyze(segment).Challenges.FrequentSelfCorrections)
	assert.False(t, lenient.Analyze(segment).Challenges.WordFindingDifficulty)
	assert.False(t, lenient.Analyze(segment).Challenges.FrequentSelfCorrections)
}

func TestSegmentAnalyzerIdempotent(t *testing.T) {
	analyzer := newTestAnalyzer()

	segment := UserSegment{
		Text:     "Good... morning. I... I woke up at... seven thirty.",
		Duration: 8.2,
	}

	first := analyzer.Analyze(segment)
	second := analyzer.Analyze(segment)
	assert.Equal(t, first, second, "analysis is a pure function of its input")
}

func TestCommunicationChallengesNames(t *testing.T) {
	c := CommunicationChallenges{SlowSpeechRate: true, IncompleteThoughts: true}
	assert.Equal(t, []string{"slow_speech_rate", "incomplete_thoughts"}, c.Names())
	assert.True(t, c.Any())

	assert.Nil(t, CommunicationChallenges{}.Names())
	assert.False(t, CommunicationChallenges{}.Any())
}
