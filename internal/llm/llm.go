package llm

import "context"

// Completion is the payload returned by a single model call.
type Completion struct {
	Content string
	Tokens  int
	CostUSD float64
}

// Completer performs one model completion. Implementations own retry,
// timeout, and temperature policy; callers pass the persona temperature
// through unconditionally and rely on the transport to drop it for
// models that reject the parameter.
type Completer interface {
	Complete(ctx context.Context, model, systemPrompt, prompt string, temperature float64) (*Completion, error)
}

// ClampConfidence clamps a confidence value to the valid [0, 1] range.
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
