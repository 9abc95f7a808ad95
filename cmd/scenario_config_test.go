package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumo-chaos/sumo-chaos/chaos"
)

func TestLoadScenario_EmptyPath_Defaults(t *testing.T) {
	s, err := LoadScenario("")

	require.NoError(t, err)
	assert.Equal(t, "intersection.sumocfg", s.SumoCfg)
	assert.True(t, s.GUI)
	assert.Empty(t, s.Effects)
}

func TestLoadScenario_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sumocfg: rush_hour.sumocfg
gui: false
effects:
  pothole:
    speed_reduction: 0.8
`), 0o644))

	s, err := LoadScenario(path)

	require.NoError(t, err)
	assert.Equal(t, "rush_hour.sumocfg", s.SumoCfg)
	assert.False(t, s.GUI)
	assert.Equal(t, 0.8, s.Effects["pothole"].SpeedReduction)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func TestLoadScenario_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sumocfg: [unterminated"), 0o644))

	_, err := LoadScenario(path)

	assert.Error(t, err)
}

func TestEffectsTable_MergesOverBuiltins(t *testing.T) {
	s := Scenario{Effects: map[string]chaos.Effects{
		"pothole": {SpeedReduction: 0.9},
		"flood":   {Blocked: true},
	}}

	table := s.EffectsTable()

	// overridden entry replaces the builtin
	assert.Equal(t, 0.9, table[chaos.Pothole].SpeedReduction)
	// untouched builtins survive
	assert.Equal(t, chaos.DefaultEffects()[chaos.Vendor], table[chaos.Vendor])
	// novel types are carried through
	assert.True(t, table[chaos.ObstructionType("flood")].Blocked)
}
