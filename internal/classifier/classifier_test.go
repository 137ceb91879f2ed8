package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/lorenzotomasdiez/llm-jury/internal/llm"
)

func TestFunctionClassifier(t *testing.T) {
	c := NewFunctionClassifier(func(text string) (string, float64, error) {
		if text == "bad" {
			return "unsafe", 0.9, nil
		}
		return "safe", 0.8, nil
	}, []string{"safe", "unsafe"})

	result, err := c.Classify(context.Background(), "bad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != "unsafe" {
		t.Errorf("expected 'unsafe', got %q", result.Label)
	}
	if result.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %f", result.Confidence)
	}
	if len(c.Labels()) != 2 || c.Labels()[0] != "safe" {
		t.Errorf("unexpected labels: %v", c.Labels())
	}
}

func TestFunctionClassifierError(t *testing.T) {
	c := NewFunctionClassifier(func(string) (string, float64, error) {
		return "", 0, errors.New("boom")
	}, []string{"safe"})

	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestClassifyBatchSerial(t *testing.T) {
	var order []string
	c := NewFunctionClassifier(func(text string) (string, float64, error) {
		order = append(order, text)
		return "safe", 1, nil
	}, []string{"safe"})

	results, err := ClassifyBatch(context.Background(), c, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if order[i] != want {
			t.Errorf("call %d: expected %q, got %q", i, want, order[i])
		}
	}
}

// mockCompleter returns canned content.
type mockCompleter struct {
	content string
	cost    float64
	err     error
}

func (m *mockCompleter) Complete(_ context.Context, _, _, _ string, _ float64) (*llm.Completion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Completion{Content: m.content, CostUSD: m.cost}, nil
}

func TestLLMClassifierParsesJSON(t *testing.T) {
	c := NewLLMClassifier(&mockCompleter{content: `{"label":"unsafe","confidence":0.82}`, cost: 0.001}, "test-model", []string{"safe", "unsafe"})

	result, err := c.Classify(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != "unsafe" {
		t.Errorf("expected 'unsafe', got %q", result.Label)
	}
	if result.Confidence != 0.82 {
		t.Errorf("expected 0.82, got %f", result.Confidence)
	}
	if result.CostUSD != 0.001 {
		t.Errorf("expected cost 0.001, got %f", result.CostUSD)
	}
}

func TestLLMClassifierFallbackOnInvalidJSON(t *testing.T) {
	c := NewLLMClassifier(&mockCompleter{content: "I refuse to answer in JSON"}, "test-model", []string{"safe", "unsafe"})

	result, err := c.Classify(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Label != "safe" {
		t.Errorf("expected fallback to first label 'safe', got %q", result.Label)
	}
	if result.Confidence != 0 {
		t.Errorf("expected zero confidence, got %f", result.Confidence)
	}
	raw, ok := result.RawOutput.(map[string]any)
	if !ok || raw["raw_content"] != "I refuse to answer in JSON" {
		t.Errorf("expected raw content preserved, got %v", result.RawOutput)
	}
}

func TestLLMClassifierClampsConfidence(t *testing.T) {
	c := NewLLMClassifier(&mockCompleter{content: `{"label":"safe","confidence":1.7}`}, "test-model", []string{"safe"})

	result, err := c.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != 1 {
		t.Errorf("expected clamp to 1, got %f", result.Confidence)
	}
}

func TestLLMClassifierPropagatesTransportError(t *testing.T) {
	c := NewLLMClassifier(&mockCompleter{err: errors.New("transport down")}, "test-model", []string{"safe"})

	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
