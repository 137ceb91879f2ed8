package judge

import (
	"context"

	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
)

// Verdict is the final classification for one input plus its escalation
// audit trail. DebateTranscript is non-nil exactly when WasEscalated is
// true. JudgeStrategy tags the code path that produced the verdict.
type Verdict struct {
	Label            string             `json:"label"`
	Confidence       float64            `json:"confidence"`
	Reasoning        string             `json:"reasoning"`
	WasEscalated     bool               `json:"was_escalated"`
	PrimaryResult    *classifier.Result `json:"primary_result"`
	DebateTranscript *debate.Transcript `json:"debate_transcript,omitempty"`
	JudgeStrategy    string             `json:"judge_strategy"`
	TotalDurationMs  int64              `json:"total_duration_ms"`
	TotalCostUSD     *float64           `json:"total_cost_usd"`
}

// Strategy aggregates a completed debate transcript into a verdict.
// Implementations set TotalDurationMs from the transcript; the jury
// overwrites it with the end-to-end wall clock afterwards.
type Strategy interface {
	Judge(ctx context.Context, transcript *debate.Transcript, labels []string) (*Verdict, error)
}

// fallbackVerdict copies the primary result when the final round holds
// no persona responses.
func fallbackVerdict(transcript *debate.Transcript, strategyName string) *Verdict {
	cost := transcript.TotalCostUSD
	return &Verdict{
		Label:            transcript.PrimaryResult.Label,
		Confidence:       transcript.PrimaryResult.Confidence,
		Reasoning:        "No persona responses; returning primary classifier result.",
		WasEscalated:     true,
		PrimaryResult:    transcript.PrimaryResult,
		DebateTranscript: transcript,
		JudgeStrategy:    strategyName,
		TotalDurationMs:  transcript.DurationMs,
		TotalCostUSD:     &cost,
	}
}

func costPtr(v float64) *float64 { return &v }
