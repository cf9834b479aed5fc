package ai

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named strategy profile. Presets set the slow-moving knobs
// (aggressiveness, skill); stamina and song energy mirror live values.
type Preset struct {
	Name           string  `yaml:"name"`
	Description    string  `yaml:"description"`
	Aggressiveness float64 `yaml:"aggressiveness"`
	Skill          float64 `yaml:"skill"`
}

// Validate checks the preset's required fields and ranges.
//
// Postcondition: nil return guarantees a non-empty Name and both knobs in
// [0, 1].
func (p Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("ai.Preset: name must not be empty")
	}
	if p.Aggressiveness < 0 || p.Aggressiveness > 1 {
		return fmt.Errorf("ai.Preset %q: aggressiveness must be in [0,1], got %f", p.Name, p.Aggressiveness)
	}
	if p.Skill < 0 || p.Skill > 1 {
		return fmt.Errorf("ai.Preset %q: skill must be in [0,1], got %f", p.Name, p.Skill)
	}
	return nil
}

// BuiltinPresets returns the four stock strategies. File-loaded presets
// with the same name override these.
func BuiltinPresets() map[string]Preset {
	return map[string]Preset{
		"aggressive": {Name: "aggressive", Aggressiveness: 0.85, Skill: 0.55},
		"defensive":  {Name: "defensive", Aggressiveness: 0.3, Skill: 0.8},
		"counter":    {Name: "counter", Aggressiveness: 0.45, Skill: 0.9},
		"balanced":   {Name: "balanced", Aggressiveness: 0.55, Skill: 0.7},
	}
}

// yamlPresetFile wraps the YAML top-level key.
type yamlPresetFile struct {
	Preset *Preset `yaml:"preset"`
}

// LoadPresets reads all *.yaml files from dir and returns validated
// Presets.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error if any YAML file fails to parse or
// validate; returns (nil, nil) if dir contains no .yaml files.
func LoadPresets(dir string) ([]Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadPresets: reading %q: %w", dir, err)
	}
	var presets []Preset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadPresets: reading %s: %w", e.Name(), err)
		}
		var f yamlPresetFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("ai.LoadPresets: parsing %s: %w", e.Name(), err)
		}
		if f.Preset == nil {
			return nil, fmt.Errorf("ai.LoadPresets: %s missing top-level 'preset' key", e.Name())
		}
		if err := f.Preset.Validate(); err != nil {
			return nil, err
		}
		presets = append(presets, *f.Preset)
	}
	return presets, nil
}
