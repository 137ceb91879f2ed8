package judge

import (
	"context"

	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
)

// WeightedVote sums persona confidence per label over the final round.
// Confidence is the winning score's share of all scores. Ties break
// toward the label whose response appeared first in the round.
type WeightedVote struct{}

// NewWeightedVote creates a weighted-vote judge.
func NewWeightedVote() *WeightedVote { return &WeightedVote{} }

// Judge implements Strategy.
func (WeightedVote) Judge(_ context.Context, transcript *debate.Transcript, _ []string) (*Verdict, error) {
	finalRound := transcript.FinalRound()
	if len(finalRound) == 0 {
		return fallbackVerdict(transcript, "weighted_vote"), nil
	}

	scores := make(map[string]float64)
	var order []string
	total := 0.0
	for _, response := range finalRound {
		if _, seen := scores[response.Label]; !seen {
			order = append(order, response.Label)
		}
		scores[response.Label] += response.Confidence
		total += response.Confidence
	}

	winner := order[0]
	for _, label := range order[1:] {
		if scores[label] > scores[winner] {
			winner = label
		}
	}
	if total == 0 {
		total = 1
	}

	return &Verdict{
		Label:            winner,
		Confidence:       scores[winner] / total,
		Reasoning:        "Weighted vote based on persona confidence scores.",
		WasEscalated:     true,
		PrimaryResult:    transcript.PrimaryResult,
		DebateTranscript: transcript,
		JudgeStrategy:    "weighted_vote",
		TotalDurationMs:  transcript.DurationMs,
		TotalCostUSD:     costPtr(transcript.TotalCostUSD),
	}, nil
}
