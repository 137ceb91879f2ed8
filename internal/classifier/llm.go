package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorenzotomasdiez/llm-jury/internal/llm"
)

const defaultClassifierSystemPrompt = "Classify the text and return JSON with label and confidence."

// LLMClassifier uses a model completion as the primary classifier.
type LLMClassifier struct {
	client       llm.Completer
	model        string
	labels       []string
	systemPrompt string
	temperature  float64
}

// NewLLMClassifier creates an LLM-backed classifier for the given labels.
func NewLLMClassifier(client llm.Completer, model string, labels []string) *LLMClassifier {
	return &LLMClassifier{
		client:       client,
		model:        model,
		labels:       labels,
		systemPrompt: defaultClassifierSystemPrompt,
	}
}

// Classify prompts the model for a {"label","confidence"} JSON object.
// A malformed response falls back to the first configured label with
// zero confidence; the raw content is preserved in RawOutput.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	labelList := "any"
	if len(c.labels) > 0 {
		labelList = strings.Join(c.labels, ", ")
	}
	prompt := fmt.Sprintf(
		"Classify the following text into one of the available labels.\nLabels: %s\nText: %s\nRespond with JSON: {\"label\":\"...\",\"confidence\":0.0-1.0}.",
		labelList, text,
	)

	completion, err := c.client.Complete(ctx, c.model, c.systemPrompt, prompt, c.temperature)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	fallbackLabel := "unknown"
	if len(c.labels) > 0 {
		fallbackLabel = c.labels[0]
	}

	data, ok := llm.ParseObject(completion.Content)
	if !ok {
		return &Result{
			Label:      fallbackLabel,
			Confidence: 0,
			RawOutput:  map[string]any{"raw_content": completion.Content, "error": "invalid_json"},
			CostUSD:    completion.CostUSD,
		}, nil
	}

	label := llm.StringValue(data["label"])
	if label == "" {
		label = fallbackLabel
	}
	return &Result{
		Label:      label,
		Confidence: llm.ClampConfidence(llm.FloatValue(data["confidence"])),
		RawOutput:  data,
		CostUSD:    completion.CostUSD,
	}, nil
}

// Labels returns the ordered label list.
func (c *LLMClassifier) Labels() []string { return c.labels }
