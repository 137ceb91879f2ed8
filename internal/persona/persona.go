package persona

// Persona is a configured viewpoint used to elicit one debate opinion.
// Personas are long-lived configuration owned by whoever constructs the
// debate engine; they are never mutated during a debate.
type Persona struct {
	Name         string  `yaml:"name" json:"name"`
	Role         string  `yaml:"role" json:"role"`
	SystemPrompt string  `yaml:"system_prompt" json:"system_prompt"`
	Model        string  `yaml:"model" json:"model"`
	Temperature  float64 `yaml:"temperature" json:"temperature"`
	KnownBias    string  `yaml:"known_bias,omitempty" json:"known_bias,omitempty"`
}

// Response is one persona's opinion in one debate round. Immutable once
// created.
type Response struct {
	PersonaName  string   `json:"persona_name"`
	Label        string   `json:"label"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	KeyFactors   []string `json:"key_factors"`
	DissentNotes string   `json:"dissent_notes,omitempty"`
	RawResponse  string   `json:"raw_response,omitempty"`
	TokensUsed   int      `json:"tokens_used"`
	CostUSD      float64  `json:"cost_usd"`
}

// DefaultTemperature is applied to catalog personas and to loaded
// personas that leave the field unset.
const DefaultTemperature = 0.3

// WithModel returns a copy of personas with every model field replaced.
// An empty model returns the input unchanged.
func WithModel(personas []Persona, model string) []Persona {
	if model == "" {
		return personas
	}
	out := make([]Persona, len(personas))
	for i, p := range personas {
		p.Model = model
		out[i] = p
	}
	return out
}
