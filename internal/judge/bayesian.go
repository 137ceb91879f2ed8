package judge

import (
	"context"

	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
)

const likelihoodFloor = 1e-6

// Bayesian multiplies per-response likelihoods into a posterior over the
// supplied labels, optionally weighted by per-persona reliability
// priors. Ties break toward the earlier label in the supplied list.
type Bayesian struct {
	// priors maps persona name -> label -> reliability estimate in [0,1].
	// Missing entries default to a uniform 1/|labels|.
	priors map[string]map[string]float64
}

// NewBayesian creates a Bayesian judge with optional persona priors.
func NewBayesian(priors map[string]map[string]float64) *Bayesian {
	return &Bayesian{priors: priors}
}

// Judge implements Strategy.
func (b *Bayesian) Judge(_ context.Context, transcript *debate.Transcript, labels []string) (*Verdict, error) {
	finalRound := transcript.FinalRound()
	if len(finalRound) == 0 || len(labels) == 0 {
		return fallbackVerdict(transcript, "bayesian"), nil
	}

	uniform := 1.0 / float64(len(labels))
	posterior := make(map[string]float64, len(labels))
	for _, label := range labels {
		posterior[label] = 1
	}

	for _, response := range finalRound {
		for _, label := range labels {
			prior := uniform
			if personaPriors, ok := b.priors[response.PersonaName]; ok {
				if p, ok := personaPriors[label]; ok {
					prior = p
				}
			}
			likelihood := 1 - response.Confidence
			if response.Label == label {
				likelihood = response.Confidence
			}
			factor := prior * likelihood
			if factor < likelihoodFloor {
				factor = likelihoodFloor
			}
			posterior[label] *= factor
		}
	}

	total := 0.0
	for _, label := range labels {
		total += posterior[label]
	}
	if total == 0 {
		total = 1
	}

	winner := labels[0]
	for _, label := range labels {
		posterior[label] /= total
		if posterior[label] > posterior[winner] {
			winner = label
		}
	}

	return &Verdict{
		Label:            winner,
		Confidence:       posterior[winner],
		Reasoning:        "Bayesian aggregation across persona responses.",
		WasEscalated:     true,
		PrimaryResult:    transcript.PrimaryResult,
		DebateTranscript: transcript,
		JudgeStrategy:    "bayesian",
		TotalDurationMs:  transcript.DurationMs,
		TotalCostUSD:     costPtr(transcript.TotalCostUSD),
	}, nil
}
