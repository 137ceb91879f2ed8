package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
	"github.com/lorenzotomasdiez/llm-jury/internal/llm"
)

const llmJudgeSystemPrompt = "You are the presiding judge in an expert panel. " +
	"You have received assessments from multiple domain experts on a classification task.\n\n" +
	"Your role is to:\n" +
	"1. Weigh each expert's reasoning on its merits\n" +
	"2. Consider the strength of evidence each expert cites\n" +
	"3. Note where experts agree and disagree\n" +
	"4. Factor in each expert's known perspective/bias\n" +
	"5. If a debate summary is provided, use it to identify the decisive arguments\n" +
	"6. Deliver a final classification with clear reasoning\n\n" +
	"Respond ONLY with valid JSON:\n" +
	"{\n" +
	"  \"label\": \"<final classification>\",\n" +
	"  \"confidence\": <0.0-1.0>,\n" +
	"  \"reasoning\": \"<your synthesis of the debate>\",\n" +
	"  \"key_agreements\": [\"<points all experts agreed on>\"],\n" +
	"  \"key_disagreements\": [\"<points of contention>\"],\n" +
	"  \"decisive_factor\": \"<what tipped the decision>\"\n" +
	"}"

// LLMJudge synthesises the debate with one additional model call.
type LLMJudge struct {
	client       llm.Completer
	model        string
	systemPrompt string
	temperature  float64
}

// NewLLMJudge creates an LLM-backed judge using the given model.
func NewLLMJudge(client llm.Completer, model string) *LLMJudge {
	return &LLMJudge{
		client:       client,
		model:        model,
		systemPrompt: llmJudgeSystemPrompt,
	}
}

// Judge implements Strategy. A malformed judge response falls back to
// the primary result with the tag "llm_judge_fallback_invalid_json";
// either way the judge call's own cost is added to the transcript cost.
func (j *LLMJudge) Judge(ctx context.Context, transcript *debate.Transcript, labels []string) (*Verdict, error) {
	finalRound := transcript.FinalRound()
	if len(finalRound) == 0 {
		return fallbackVerdict(transcript, "llm_judge"), nil
	}

	completion, err := j.client.Complete(ctx, j.model, j.systemPrompt, j.buildPrompt(transcript, labels), j.temperature)
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}
	totalCost := transcript.TotalCostUSD + completion.CostUSD

	data, ok := llm.ParseObject(completion.Content)
	if !ok {
		return &Verdict{
			Label:            transcript.PrimaryResult.Label,
			Confidence:       transcript.PrimaryResult.Confidence,
			Reasoning:        "LLM judge response was not valid JSON. Falling back to primary result.",
			WasEscalated:     true,
			PrimaryResult:    transcript.PrimaryResult,
			DebateTranscript: transcript,
			JudgeStrategy:    "llm_judge_fallback_invalid_json",
			TotalDurationMs:  transcript.DurationMs,
			TotalCostUSD:     &totalCost,
		}, nil
	}

	label := llm.StringValue(data["label"])
	if label == "" {
		label = transcript.PrimaryResult.Label
	}
	confidence := transcript.PrimaryResult.Confidence
	if _, hasConfidence := data["confidence"]; hasConfidence {
		confidence = llm.ClampConfidence(llm.FloatValue(data["confidence"]))
	}
	reasoning := llm.StringValue(data["reasoning"])
	if reasoning == "" {
		reasoning = "LLM judge response."
	}

	return &Verdict{
		Label:            label,
		Confidence:       confidence,
		Reasoning:        reasoning,
		WasEscalated:     true,
		PrimaryResult:    transcript.PrimaryResult,
		DebateTranscript: transcript,
		JudgeStrategy:    "llm_judge",
		TotalDurationMs:  transcript.DurationMs,
		TotalCostUSD:     &totalCost,
	}, nil
}

func (j *LLMJudge) buildPrompt(transcript *debate.Transcript, labels []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Input: %s\n", transcript.InputText)
	fmt.Fprintf(&sb, "Available labels: %s\n", strings.Join(labels, ", "))
	fmt.Fprintf(&sb, "Primary result: %s (%.2f)\n", transcript.PrimaryResult.Label, transcript.PrimaryResult.Confidence)

	for idx, round := range transcript.Rounds {
		heading := "Initial Expert Opinions"
		if idx > 0 {
			heading = fmt.Sprintf("Revised Opinions (Round %d)", idx+1)
		}
		fmt.Fprintf(&sb, "\n%s:\n", heading)
		for _, response := range round {
			fmt.Fprintf(&sb, "- %s: %s (%.2f) | Reasoning: %s\n", response.PersonaName, response.Label, response.Confidence, response.Reasoning)
		}
	}

	if transcript.Summary != "" {
		fmt.Fprintf(&sb, "\nDebate Summary:\n%s\n", transcript.Summary)
	}

	sb.WriteString("\nRespond ONLY with JSON containing: label, confidence, reasoning, key_agreements, key_disagreements, decisive_factor.")
	return sb.String()
}
