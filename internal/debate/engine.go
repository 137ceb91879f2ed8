package debate

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/llm"
	"github.com/lorenzotomasdiez/llm-jury/internal/persona"
)

// DefaultConcurrency is the per-round chunk size for parallel persona
// queries.
const DefaultConcurrency = 5

// Engine runs one full debate per input under a configured mode.
type Engine struct {
	personas    []persona.Persona
	config      Config
	client      llm.Completer
	concurrency int
}

// NewEngine creates a debate engine. The mode must be one of the four
// supported protocols; concurrency <= 0 falls back to DefaultConcurrency.
func NewEngine(personas []persona.Persona, config Config, client llm.Completer, concurrency int) (*Engine, error) {
	if _, err := ParseMode(string(config.Mode)); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("debate: llm client is required")
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		personas:    personas,
		config:      config,
		client:      client,
		concurrency: concurrency,
	}, nil
}

// Debate runs the configured protocol for one input and returns the
// transcript. maxCostUSD, when non-nil, bounds cumulative spend: the
// sequential and deliberation protocols stop as soon as the running
// total exceeds it. A transport failure aborts the whole debate; no
// retries happen here.
func (e *Engine) Debate(ctx context.Context, text string, primary *classifier.Result, labels []string, maxCostUSD *float64) (*Transcript, error) {
	start := time.Now()
	transcript := &Transcript{
		InputText:     text,
		PrimaryResult: primary,
	}

	if len(e.personas) == 0 {
		transcript.DurationMs = time.Since(start).Milliseconds()
		return transcript, nil
	}

	var err error
	switch e.config.Mode {
	case ModeIndependent, ModeAdversarial:
		err = e.runSingleRound(ctx, transcript, text, primary, labels)
	case ModeSequential:
		err = e.runSequential(ctx, transcript, text, primary, labels, maxCostUSD)
	case ModeDeliberation:
		err = e.runDeliberation(ctx, transcript, text, primary, labels, maxCostUSD)
	default:
		err = fmt.Errorf("debate: unsupported mode %q", e.config.Mode)
	}
	if err != nil {
		return nil, err
	}

	transcript.DurationMs = time.Since(start).Milliseconds()
	return transcript, nil
}

func (e *Engine) runSingleRound(ctx context.Context, transcript *Transcript, text string, primary *classifier.Result, labels []string) error {
	responses, err := e.runRound(ctx, text, primary, labels, nil, false)
	if err != nil {
		return err
	}
	appendRound(transcript, responses)
	return nil
}

func (e *Engine) runSequential(ctx context.Context, transcript *Transcript, text string, primary *classifier.Result, labels []string, maxCostUSD *float64) error {
	var responses []persona.Response
	for i, p := range e.personas {
		var prior [][]persona.Response
		if len(responses) > 0 {
			prior = [][]persona.Response{responses}
		}
		response, err := e.queryPersona(ctx, p, i, text, primary, labels, prior, false)
		if err != nil {
			return err
		}
		responses = append(responses, response)
		transcript.TotalTokens += response.TokensUsed
		transcript.TotalCostUSD += response.CostUSD
		// Per-step cost guard: the round may end shorter than the panel.
		if maxCostUSD != nil && transcript.TotalCostUSD > *maxCostUSD {
			break
		}
	}
	transcript.Rounds = append(transcript.Rounds, responses)
	return nil
}

func (e *Engine) runDeliberation(ctx context.Context, transcript *Transcript, text string, primary *classifier.Result, labels []string, maxCostUSD *float64) error {
	// Stage 1: initial opinions, parallel and independent.
	first, err := e.runRound(ctx, text, primary, labels, nil, false)
	if err != nil {
		return err
	}
	appendRound(transcript, first)

	costExceeded := func() bool {
		return maxCostUSD != nil && transcript.TotalCostUSD > *maxCostUSD
	}
	if costExceeded() {
		return nil
	}

	// Stage 2: revision rounds. Each stops early on consensus in the
	// latest round or on a cost breach after the round has been paid for.
	maxRounds := e.config.MaxRounds
	if maxRounds < 1 {
		maxRounds = 1
	}
	for round := 1; round < maxRounds; round++ {
		if consensusReached(transcript.FinalRound()) {
			break
		}
		current, err := e.runRound(ctx, text, primary, labels, transcript.Rounds, true)
		if err != nil {
			return err
		}
		appendRound(transcript, current)
		if costExceeded() {
			return nil
		}
	}
	// Stage 3: neutral summary of the whole debate.
	summary, tokens, cost, err := e.summarise(ctx, text, labels, transcript.Rounds)
	if err != nil {
		return err
	}
	transcript.Summary = summary
	transcript.TotalTokens += tokens
	transcript.TotalCostUSD += cost
	return nil
}

// runRound queries every persona against the shared prior history, in
// chunks of e.concurrency. Chunks run sequentially; within a chunk the
// calls are concurrent and any failure fails the chunk. Response order
// always matches persona order.
func (e *Engine) runRound(ctx context.Context, text string, primary *classifier.Result, labels []string, prior [][]persona.Response, deliberation bool) ([]persona.Response, error) {
	responses := make([]persona.Response, len(e.personas))
	for chunkStart := 0; chunkStart < len(e.personas); chunkStart += e.concurrency {
		chunkEnd := min(chunkStart+e.concurrency, len(e.personas))
		g, gctx := errgroup.WithContext(ctx)
		for i := chunkStart; i < chunkEnd; i++ {
			i := i
			g.Go(func() error {
				response, err := e.queryPersona(gctx, e.personas[i], i, text, primary, labels, prior, deliberation)
				if err != nil {
					return err
				}
				responses[i] = response
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return responses, nil
}

// queryPersona performs one persona call: build the prompt, complete,
// parse. A malformed model response yields the parse-fallback sentinel
// instead of an error; only transport failures propagate.
func (e *Engine) queryPersona(ctx context.Context, p persona.Persona, index int, text string, primary *classifier.Result, labels []string, prior [][]persona.Response, deliberation bool) (persona.Response, error) {
	var prompt string
	if deliberation {
		prompt = e.buildDeliberationPrompt(p, text, primary, labels, prior)
	} else {
		prompt = e.buildPersonaPrompt(p, index, text, primary, labels, prior)
	}

	completion, err := e.client.Complete(ctx, p.Model, p.SystemPrompt, prompt, p.Temperature)
	if err != nil {
		return persona.Response{}, fmt.Errorf("debate: persona %s: %w", p.Name, err)
	}

	response := parsePersonaResponse(completion.Content, p.Name)
	response.RawResponse = completion.Content
	response.TokensUsed = completion.Tokens
	response.CostUSD = completion.CostUSD
	return response, nil
}

// parsePersonaResponse extracts a structured opinion from model output.
// On failure it substitutes the sentinel response: label "unknown", zero
// confidence, and the raw content preserved in the reasoning for audit.
func parsePersonaResponse(raw, personaName string) persona.Response {
	payload, ok := llm.ParseObject(raw)
	if !ok {
		return persona.Response{
			PersonaName: personaName,
			Label:       "unknown",
			Confidence:  0,
			Reasoning:   "Failed to parse persona response as JSON: " + truncate(raw, 200),
			KeyFactors:  []string{},
		}
	}

	label := llm.StringValue(payload["label"])
	if label == "" {
		label = "unknown"
	}
	keyFactors := llm.StringList(payload["key_factors"])
	if keyFactors == nil {
		keyFactors = []string{}
	}
	return persona.Response{
		PersonaName:  personaName,
		Label:        label,
		Confidence:   llm.ClampConfidence(llm.FloatValue(payload["confidence"])),
		Reasoning:    llm.StringValue(payload["reasoning"]),
		KeyFactors:   keyFactors,
		DissentNotes: llm.StringValue(payload["dissent_notes"]),
	}
}

// consensusReached reports whether a round is unanimous: non-empty with
// exactly one distinct label.
func consensusReached(responses []persona.Response) bool {
	if len(responses) == 0 {
		return false
	}
	first := responses[0].Label
	for _, r := range responses[1:] {
		if r.Label != first {
			return false
		}
	}
	return true
}

func appendRound(transcript *Transcript, responses []persona.Response) {
	transcript.Rounds = append(transcript.Rounds, responses)
	for _, r := range responses {
		transcript.TotalTokens += r.TokensUsed
		transcript.TotalCostUSD += r.CostUSD
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
