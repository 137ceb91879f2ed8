package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a custom persona panel from a YAML file. The file is a
// list of persona entries:
//
//	- name: Brand Safety Reviewer
//	  role: Protects advertiser trust
//	  system_prompt: You review content for brand safety concerns...
//	  model: openai/gpt-4o-mini
//	  temperature: 0.2
//	  known_bias: advertiser-protective
//
// Name, role, and system_prompt are required; temperature defaults to
// DefaultTemperature when unset.
func LoadFile(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: reading %s: %w", path, err)
	}

	var personas []Persona
	if err := yaml.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("persona: parsing %s: %w", path, err)
	}
	if len(personas) == 0 {
		return nil, fmt.Errorf("persona: %s contains no personas", path)
	}

	for i := range personas {
		p := &personas[i]
		if p.Name == "" {
			return nil, fmt.Errorf("persona: %s entry %d: name is required", path, i)
		}
		if p.Role == "" {
			return nil, fmt.Errorf("persona: %s entry %d (%s): role is required", path, i, p.Name)
		}
		if p.SystemPrompt == "" {
			return nil, fmt.Errorf("persona: %s entry %d (%s): system_prompt is required", path, i, p.Name)
		}
		if p.Temperature == 0 {
			p.Temperature = DefaultTemperature
		}
	}
	return personas, nil
}
