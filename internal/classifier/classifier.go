package classifier

import (
	"context"
	"fmt"
)

// Result is the output of one primary-classifier call. Each call
// produces a fresh value; results are never shared or mutated.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	RawOutput  any     `json:"raw_output,omitempty"`
	CostUSD    float64 `json:"cost_usd,omitempty"`
}

// Classifier maps text to a labeled result with a confidence score.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
	Labels() []string
}

// ClassifyBatch iterates Classify serially over texts, for classifiers
// without a native batch method.
func ClassifyBatch(ctx context.Context, c Classifier, texts []string) ([]*Result, error) {
	results := make([]*Result, 0, len(texts))
	for _, text := range texts {
		result, err := c.Classify(ctx, text)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// FunctionClassifier adapts a plain prediction function to the
// Classifier contract.
type FunctionClassifier struct {
	fn     func(text string) (label string, confidence float64, err error)
	labels []string
}

// NewFunctionClassifier wraps fn as a Classifier over the given labels.
func NewFunctionClassifier(fn func(string) (string, float64, error), labels []string) *FunctionClassifier {
	return &FunctionClassifier{fn: fn, labels: labels}
}

// Classify invokes the wrapped function.
func (f *FunctionClassifier) Classify(_ context.Context, text string) (*Result, error) {
	label, confidence, err := f.fn(text)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	return &Result{
		Label:      label,
		Confidence: confidence,
		RawOutput:  map[string]any{"label": label, "confidence": confidence},
	}, nil
}

// Labels returns the ordered label list.
func (f *FunctionClassifier) Labels() []string { return f.labels }
