package debate

import (
	"fmt"

	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/persona"
)

// Mode selects the debate protocol.
type Mode string

const (
	// ModeIndependent queries every persona once, in parallel, with no
	// visibility into the other opinions.
	ModeIndependent Mode = "independent"
	// ModeSequential queries personas in list order; each sees the
	// responses produced earlier in the same round.
	ModeSequential Mode = "sequential"
	// ModeDeliberation runs initial opinions, then revision rounds where
	// personas engage with each other, then a neutral summary.
	ModeDeliberation Mode = "deliberation"
	// ModeAdversarial is an independent round with prosecution/defense
	// stances assigned by persona position.
	ModeAdversarial Mode = "adversarial"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIndependent, ModeSequential, ModeDeliberation, ModeAdversarial:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("debate: unsupported mode %q", s)
	}
}

// Config controls how a debate runs.
type Config struct {
	Mode Mode
	// MaxRounds bounds the total rounds in deliberation mode (initial
	// opinions included). Other modes always run one round.
	MaxRounds int
	// IncludePrimaryResult shows personas the primary classifier's label.
	IncludePrimaryResult bool
	// IncludeConfidence shows the primary confidence alongside the label.
	IncludeConfidence bool
}

// DefaultConfig returns the deliberation-mode defaults.
func DefaultConfig() Config {
	return Config{
		Mode:                 ModeDeliberation,
		MaxRounds:            2,
		IncludePrimaryResult: true,
		IncludeConfidence:    true,
	}
}

// Transcript is the full record of one debate. Rounds are ordered by
// round index; within a round, responses follow persona invocation
// order. Returned immutable from Debate.
type Transcript struct {
	InputText     string               `json:"input_text"`
	PrimaryResult *classifier.Result   `json:"primary_result"`
	Rounds        [][]persona.Response `json:"rounds"`
	Summary       string               `json:"summary,omitempty"`
	DurationMs    int64                `json:"duration_ms"`
	TotalTokens   int                  `json:"total_tokens"`
	TotalCostUSD  float64              `json:"total_cost_usd"`
}

// FinalRound returns the last round, or nil when the transcript has none.
func (t *Transcript) FinalRound() []persona.Response {
	if len(t.Rounds) == 0 {
		return nil
	}
	return t.Rounds[len(t.Rounds)-1]
}
