package judge

import (
	"context"
	"strings"

	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
)

// MajorityVote picks the most frequent label in the final round.
// Confidence is the winner's share of the round. Ties break toward the
// label whose response appeared first in the round.
type MajorityVote struct{}

// NewMajorityVote creates a majority-vote judge.
func NewMajorityVote() *MajorityVote { return &MajorityVote{} }

// Judge implements Strategy.
func (MajorityVote) Judge(_ context.Context, transcript *debate.Transcript, _ []string) (*Verdict, error) {
	finalRound := transcript.FinalRound()
	if len(finalRound) == 0 {
		return fallbackVerdict(transcript, "majority_vote"), nil
	}

	counts := make(map[string]int)
	var order []string
	for _, response := range finalRound {
		if _, seen := counts[response.Label]; !seen {
			order = append(order, response.Label)
		}
		counts[response.Label]++
	}

	winner := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[winner] {
			winner = label
		}
	}

	var reasons []string
	for _, response := range finalRound {
		if response.Label == winner && response.Reasoning != "" {
			reasons = append(reasons, response.Reasoning)
		}
	}
	reasoning := strings.Join(reasons, " ")
	if reasoning == "" {
		reasoning = "Majority vote selected the winner."
	}

	return &Verdict{
		Label:            winner,
		Confidence:       float64(counts[winner]) / float64(len(finalRound)),
		Reasoning:        reasoning,
		WasEscalated:     true,
		PrimaryResult:    transcript.PrimaryResult,
		DebateTranscript: transcript,
		JudgeStrategy:    "majority_vote",
		TotalDurationMs:  transcript.DurationMs,
		TotalCostUSD:     costPtr(transcript.TotalCostUSD),
	}, nil
}
