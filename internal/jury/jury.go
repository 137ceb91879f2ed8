package jury

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
	"github.com/lorenzotomasdiez/llm-jury/internal/judge"
	"github.com/lorenzotomasdiez/llm-jury/internal/llm"
	"github.com/lorenzotomasdiez/llm-jury/internal/persona"
)

const (
	// DefaultThreshold is the confidence gate below which inputs
	// escalate to a debate.
	DefaultThreshold = 0.7
	// DefaultBatchConcurrency bounds parallel inputs in ClassifyBatch.
	DefaultBatchConcurrency = 10
)

// Stats counts how traffic split between the fast path and escalation.
type Stats struct {
	Total     int `json:"total"`
	FastPath  int `json:"fast_path"`
	Escalated int `json:"escalated"`
}

// EscalationRate returns the fraction of inputs that escalated.
func (s Stats) EscalationRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Escalated) / float64(s.Total)
}

// CostSavingsVsAlwaysEscalate returns the fraction of debates avoided
// compared to escalating every input.
func (s Stats) CostSavingsVsAlwaysEscalate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.FastPath) / float64(s.Total)
}

// Options configures a Jury. Zero values pick the documented defaults.
type Options struct {
	// Threshold is the confidence gate; 0 means DefaultThreshold.
	Threshold float64
	// Judge aggregates debate transcripts. Nil means an LLM judge on
	// JudgeModel (or the first persona's model when JudgeModel is empty).
	Judge judge.Strategy
	// JudgeModel is only consulted when Judge is nil.
	JudgeModel string
	// DebateConfig selects the debate protocol. A zero Mode means
	// debate.DefaultConfig().
	DebateConfig debate.Config
	// DebateConcurrency is the per-round persona fan-out.
	DebateConcurrency int
	// MaxDebateCostUSD caps cumulative debate spend per input. Nil
	// disables the cap.
	MaxDebateCostUSD *float64
}

// Jury gates a primary classifier behind a confidence threshold and
// escalates uncertain inputs to a persona debate plus a judge.
type Jury struct {
	// EscalationOverride, when set, replaces the confidence check as
	// the escalation decision. Escalation still requires personas.
	EscalationOverride func(*classifier.Result) bool
	// OnEscalation fires just before a debate starts.
	OnEscalation func(text string, primary *classifier.Result)
	// OnVerdict fires after each escalated verdict is assembled.
	OnVerdict func(*judge.Verdict)

	primary      classifier.Classifier
	personas     int
	engine       *debate.Engine
	strategy     judge.Strategy
	maxDebateUSD *float64

	mu        sync.Mutex
	threshold float64
	stats     Stats
}

// New builds a jury around a primary classifier. personas may be empty,
// in which case every input takes the fast path regardless of
// confidence.
func New(primary classifier.Classifier, personas []persona.Persona, client llm.Completer, opts Options) (*Jury, error) {
	if primary == nil {
		return nil, fmt.Errorf("jury: primary classifier is required")
	}

	config := opts.DebateConfig
	if config.Mode == "" {
		config = debate.DefaultConfig()
	}

	// A panel-less jury never debates, so it may run without a client.
	var engine *debate.Engine
	if len(personas) > 0 {
		var err error
		engine, err = debate.NewEngine(personas, config, client, opts.DebateConcurrency)
		if err != nil {
			return nil, err
		}
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	strategy := opts.Judge
	if strategy == nil {
		model := opts.JudgeModel
		if model == "" && len(personas) > 0 {
			model = personas[0].Model
		}
		strategy = judge.NewLLMJudge(client, model)
	}

	return &Jury{
		primary:      primary,
		personas:     len(personas),
		engine:       engine,
		strategy:     strategy,
		maxDebateUSD: opts.MaxDebateCostUSD,
		threshold:    threshold,
	}, nil
}

// Classify runs one input through the gate: primary classifier first,
// then a debate and judge only when confidence falls below the
// threshold (strictly) and personas are configured.
func (j *Jury) Classify(ctx context.Context, text string) (*judge.Verdict, error) {
	start := time.Now()

	result, err := j.primary.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("jury: primary classifier: %w", err)
	}

	escalate := j.shouldEscalate(result)
	j.recordOutcome(escalate)

	if !escalate {
		zero := 0.0
		return &judge.Verdict{
			Label:           result.Label,
			Confidence:      result.Confidence,
			Reasoning:       "Classified by primary classifier with sufficient confidence.",
			WasEscalated:    false,
			PrimaryResult:   result,
			JudgeStrategy:   "primary_classifier",
			TotalDurationMs: time.Since(start).Milliseconds(),
			TotalCostUSD:    &zero,
		}, nil
	}

	if j.OnEscalation != nil {
		j.OnEscalation(text, result)
	}

	transcript, err := j.engine.Debate(ctx, text, result, j.primary.Labels(), j.maxDebateUSD)
	if err != nil {
		return nil, err
	}

	// The engine stops spending once the cap is breached, but the
	// breaching call has already been paid for. In that case the debate
	// is incomplete, so the primary result stands.
	// The fallback returns before the judge runs, so the verdict
	// callback does not fire on this path.
	if j.maxDebateUSD != nil && transcript.TotalCostUSD > *j.maxDebateUSD {
		cost := transcript.TotalCostUSD
		return &judge.Verdict{
			Label:            result.Label,
			Confidence:       result.Confidence,
			Reasoning:        "Debate cost limit exceeded; returning primary classifier result.",
			WasEscalated:     true,
			PrimaryResult:    result,
			DebateTranscript: transcript,
			JudgeStrategy:    "cost_guard_primary_fallback",
			TotalDurationMs:  time.Since(start).Milliseconds(),
			TotalCostUSD:     &cost,
		}, nil
	}

	verdict, err := j.strategy.Judge(ctx, transcript, j.primary.Labels())
	if err != nil {
		return nil, err
	}
	verdict.WasEscalated = true
	verdict.PrimaryResult = result
	verdict.DebateTranscript = transcript
	verdict.TotalDurationMs = time.Since(start).Milliseconds()
	if verdict.TotalCostUSD == nil {
		cost := transcript.TotalCostUSD
		verdict.TotalCostUSD = &cost
	}

	if j.OnVerdict != nil {
		j.OnVerdict(verdict)
	}
	return verdict, nil
}

// ClassifyBatch classifies texts concurrently. Verdicts line up with
// texts by index; a failed input leaves a nil slot and its error is
// joined into the returned error. concurrency <= 0 means
// DefaultBatchConcurrency.
func (j *Jury) ClassifyBatch(ctx context.Context, texts []string, concurrency int) ([]*judge.Verdict, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if concurrency > len(texts) {
		concurrency = len(texts)
	}

	verdicts := make([]*judge.Verdict, len(texts))
	errs := make([]error, len(texts))
	var next atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(texts) {
					return
				}
				verdict, err := j.Classify(ctx, texts[i])
				if err != nil {
					errs[i] = fmt.Errorf("jury: input %d: %w", i, err)
					continue
				}
				verdicts[i] = verdict
			}
		}()
	}
	wg.Wait()

	return verdicts, errors.Join(errs...)
}

// Threshold returns the current confidence gate.
func (j *Jury) Threshold() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.threshold
}

// SetThreshold replaces the confidence gate for subsequent inputs.
func (j *Jury) SetThreshold(threshold float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.threshold = threshold
}

// Classifier exposes the wrapped primary classifier.
func (j *Jury) Classifier() classifier.Classifier { return j.primary }

// Stats returns a snapshot of the fast-path/escalation counters.
func (j *Jury) Stats() Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

// ResetStats zeroes the counters, e.g. between calibration sweeps.
func (j *Jury) ResetStats() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stats = Stats{}
}

func (j *Jury) shouldEscalate(result *classifier.Result) bool {
	if j.personas == 0 {
		return false
	}
	if j.EscalationOverride != nil {
		return j.EscalationOverride(result)
	}
	return result.Confidence < j.Threshold()
}

func (j *Jury) recordOutcome(escalated bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stats.Total++
	if escalated {
		j.stats.Escalated++
	} else {
		j.stats.FastPath++
	}
}
