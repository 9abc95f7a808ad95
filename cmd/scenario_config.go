package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sumo-chaos/sumo-chaos/chaos"
)

// Scenario is the optional YAML scenario file. Absent keys keep their
// defaults; the effects map overrides individual obstruction types
// without replacing the whole table.
type Scenario struct {
	SumoCfg string                   `yaml:"sumocfg"`
	GUI     bool                     `yaml:"gui"`
	Effects map[string]chaos.Effects `yaml:"effects"`
}

// DefaultScenario matches the web demo intersection.
func DefaultScenario() Scenario {
	return Scenario{
		SumoCfg: "intersection.sumocfg",
		GUI:     true,
	}
}

// LoadScenario reads a scenario YAML file. An empty path returns the
// defaults.
func LoadScenario(path string) (Scenario, error) {
	s := DefaultScenario()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// EffectsTable merges the file's per-type overrides over the built-in
// effect records.
func (s Scenario) EffectsTable() map[chaos.ObstructionType]chaos.Effects {
	table := chaos.DefaultEffects()
	for typ, eff := range s.Effects {
		table[chaos.ObstructionType(typ)] = eff
	}
	return table
}
