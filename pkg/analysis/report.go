package analysis

import (
	"fmt"
	"io"
	"strings"
)

// CallInfo identifies the call a report describes.
type CallInfo struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id"`
	Status         string `json:"status"`
	TurnCount      int    `json:"turn_count"`
}

const reportTextPreviewLen = 100

// WriteReport renders a line-oriented, human-readable session report with
// labelled sections: call info, per-segment metrics, session scores,
// composite score, interpretation and recommendations. The formatting is
// presentational; only the reported values are part of the scoring
// contract.
func WriteReport(w io.Writer, info CallInfo, summary *SessionSummary) {
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "Call Information:")
	fmt.Fprintf(w, "  Conversation ID: %s\n", info.ConversationID)
	fmt.Fprintf(w, "  Agent ID: %s\n", info.AgentID)
	fmt.Fprintf(w, "  Status: %s\n", info.Status)
	fmt.Fprintf(w, "  Total transcript turns: %d\n", info.TurnCount)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "User Speech Analysis:")
	fmt.Fprintf(w, "  User speech segments found: %d\n", len(summary.Segments))

	if len(summary.Segments) == 0 {
		fmt.Fprintln(w, "  No user speech found in transcript")
		return
	}

	for i, seg := range summary.Segments {
		fmt.Fprintf(w, "\n  Segment %d:\n", i+1)
		fmt.Fprintf(w, "    Text: '%s'\n", previewText(seg.Text))
		fmt.Fprintf(w, "    Duration: %.1fs", seg.DurationSeconds)
		if seg.Estimated {
			fmt.Fprint(w, " (estimated)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "    Words: %d\n", seg.WordCount)
		fmt.Fprintf(w, "    Speech rate: %.1f WPM\n", seg.SpeechRateWPM)
		fmt.Fprintf(w, "    Pauses detected: %d\n", seg.PauseCount)
		fmt.Fprintf(w, "    Speech density: %.2f words/sec\n", seg.SpeechDensity)
		fmt.Fprintf(w, "    Fluency score: %.1f\n", seg.Fluency.OverallFluencyScore)
		fmt.Fprintf(w, "    Clarity score: %.1f\n", seg.Effectiveness.MessageClarityScore)

		if seg.Challenges.Any() {
			fmt.Fprintf(w, "    Communication challenges: %s\n", strings.Join(seg.Challenges.Names(), ", "))
		} else {
			fmt.Fprintln(w, "    No significant communication challenges")
		}
	}

	if summary.Empty() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No speaking time recorded; session scores unavailable")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Overall Speech Analysis:")
	fmt.Fprintf(w, "  Total speaking time: %.1fs\n", summary.TotalDuration)
	fmt.Fprintf(w, "  Total words spoken: %d\n", summary.TotalWords)
	fmt.Fprintf(w, "  Overall speech rate: %.1f WPM\n", summary.OverallSpeechRateWPM)
	fmt.Fprintf(w, "  Total pauses: %d\n", summary.TotalPauses)
	fmt.Fprintf(w, "  Pause rate: %.2f pauses per word\n", summary.PauseRate)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Session Scores:")
	fmt.Fprintf(w, "  Message clarity: %.1f\n", summary.Scores.MessageClarity)
	fmt.Fprintf(w, "  Verbal fluency: %.1f\n", summary.Scores.VerbalFluency)
	fmt.Fprintf(w, "  Sentence completion: %.1f\n", summary.Scores.SentenceCompletion)
	fmt.Fprintf(w, "  Repetition control: %.1f\n", summary.Scores.RepetitionControl)
	fmt.Fprintf(w, "  Correction frequency: %.1f\n", summary.Scores.CorrectionFrequency)
	fmt.Fprintf(w, "  Filler control: %.1f\n", summary.Scores.FillerControl)
	fmt.Fprintf(w, "  Composite score: %.1f\n", summary.Scores.Composite)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Interpretation: %s\n", summary.Interpretation)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recommendations:")
	for _, rec := range summary.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}

func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= reportTextPreviewLen {
		return text
	}
	return string(runes[:reportTextPreviewLen]) + "..."
}
