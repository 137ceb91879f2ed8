package models

import (
	"github.com/lorenzotomasdiez/llm-jury/internal/openrouter"
	"github.com/lorenzotomasdiez/llm-jury/internal/persona"
)

// Registry holds a filtered list of free models.
type Registry struct {
	free []openrouter.Model
}

// NewRegistry creates a registry, keeping only free models (Prompt == "0" and Completion == "0").
// Models with nil Pricing are excluded.
func NewRegistry(models []openrouter.Model) *Registry {
	var free []openrouter.Model
	for _, m := range models {
		if m.Pricing == nil {
			continue
		}
		if m.Pricing.Prompt == "0" && m.Pricing.Completion == "0" {
			free = append(free, m)
		}
	}
	return &Registry{free: free}
}

// FreeModels returns all free models in the registry.
func (r *Registry) FreeModels() []openrouter.Model {
	return r.free
}

// AssignToPersonas returns copies of the personas with free models
// assigned round-robin, cycling when the panel outnumbers the free
// list. Personas that already name a model keep it. An empty registry
// returns the panel unchanged.
func (r *Registry) AssignToPersonas(personas []persona.Persona) []persona.Persona {
	if len(r.free) == 0 {
		return personas
	}
	assigned := make([]persona.Persona, len(personas))
	next := 0
	for i, p := range personas {
		if p.Model != "" {
			assigned[i] = p
			continue
		}
		p.Model = r.free[next%len(r.free)].ID
		assigned[i] = p
		next++
	}
	return assigned
}

// DefaultFreeModels returns a hardcoded fallback list of known free models.
func DefaultFreeModels() []openrouter.Model {
	return []openrouter.Model{
		{ID: "qwen/qwen3-235b-a22b:free", Name: "Qwen3 235B A22B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "google/gemma-3n-e2b-it:free", Name: "Gemma 3n 2B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "nvidia/nemotron-nano-9b-v2:free", Name: "Nemotron Nano 9B V2", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "qwen/qwen3-coder:free", Name: "Qwen3 Coder 480B A35B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
		{ID: "openai/gpt-oss-120b:free", Name: "GPT OSS 120B", Pricing: &openrouter.Pricing{Prompt: "0", Completion: "0"}},
	}
}
