package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest holds optional per-tool overrides loaded from a YAML file:
//
//	tools:
//	  - name: get_current_weather
//	    enabled: false
//	  - name: add
//	    description: Integer addition
type Manifest struct {
	Tools []ManifestTool `yaml:"tools"`
}

// ManifestTool overrides one tool's enablement and/or description.
type ManifestTool struct {
	Name        string `yaml:"name"`
	Enabled     *bool  `yaml:"enabled"`
	Description string `yaml:"description"`
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse tool manifest: %w", err)
	}
	return &m, nil
}

// Apply returns defs with the manifest's overrides applied. Entries naming
// unknown tools are ignored.
func (m *Manifest) Apply(defs []Definition) []Definition {
	overrides := make(map[string]ManifestTool, len(m.Tools))
	for _, t := range m.Tools {
		overrides[t.Name] = t
	}

	out := make([]Definition, len(defs))
	for i, def := range defs {
		if o, ok := overrides[def.Name]; ok {
			if o.Enabled != nil {
				def.Enabled = *o.Enabled
			}
			if o.Description != "" {
				def.Description = o.Description
			}
		}
		out[i] = def
	}
	return out
}
