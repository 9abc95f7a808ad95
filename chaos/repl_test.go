package chaos

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runScript feeds command lines through a REPL over a started
// controller and returns the transcript.
func runScript(t *testing.T, script string) (string, *Controller, *fakeEngine) {
	t.Helper()
	ctrl, engine := startedController(t)
	var out bytes.Buffer
	repl := &REPL{Controller: ctrl, In: strings.NewReader(script), Out: &out}
	require.NoError(t, repl.Run())
	return out.String(), ctrl, engine
}

func TestREPL_AddListRemove(t *testing.T) {
	out, ctrl, engine := runScript(t, "add pothole -5 100\nlist\nremove pothole_0\nlist\nquit\n")

	assert.Contains(t, out, "Added pothole with ID: pothole_0")
	assert.Contains(t, out, "pothole_0: pothole on north_approach_0 at (-5, 100)")
	assert.Contains(t, out, "Removed obstruction pothole_0")
	assert.Contains(t, out, "No active obstructions")
	assert.Empty(t, ctrl.List())
	assert.InDelta(t, defaultLaneSpeed, engine.laneSpeed("north_approach_0"), 1e-9)
}

func TestREPL_AddWithExplicitLength(t *testing.T) {
	_, ctrl, _ := runScript(t, "add barricade 0 -200 35\nquit\n")

	obs := ctrl.List()
	require.Len(t, obs, 1)
	assert.Equal(t, 35.0, obs[0].Length)
}

func TestREPL_AddDefaultsLength(t *testing.T) {
	_, ctrl, _ := runScript(t, "add vendor 100 5\nquit\n")

	obs := ctrl.List()
	require.Len(t, obs, 1)
	assert.Equal(t, defaultObstructionLength, obs[0].Length)
}

func TestREPL_MalformedCommands_LoopContinues(t *testing.T) {
	out, ctrl, _ := runScript(t, strings.Join([]string{
		"add pothole",           // too few args
		"add pothole abc 100",   // non-numeric x
		"remove",                // missing id
		"bogus",                 // unknown command
		"add pothole -5 100",    // still works afterwards
		"quit",
	}, "\n")+"\n")

	assert.Contains(t, out, "usage: add <type> <x> <y> [length]")
	assert.Contains(t, out, `x must be a number, got "abc"`)
	assert.Contains(t, out, "usage: remove <id>")
	assert.Contains(t, out, `unknown command "bogus"`)
	assert.Contains(t, out, "Added pothole with ID: pothole_0")
	assert.Len(t, ctrl.List(), 1)
}

func TestREPL_PreconditionFailures_Printed(t *testing.T) {
	out, _, _ := runScript(t, "add pothole 0 0\nremove pothole_7\nquit\n")

	assert.Contains(t, out, "not on a valid road lane")
	assert.Contains(t, out, "obstruction pothole_7: obstruction not found")
}

func TestREPL_Clear(t *testing.T) {
	out, ctrl, _ := runScript(t, "add pothole -5 100\nadd vendor 100 5\nclear\nquit\n")

	assert.Contains(t, out, "All obstructions cleared")
	assert.Empty(t, ctrl.List())
}

func TestREPL_Metrics(t *testing.T) {
	ctrl, engine := startedController(t)
	engine.vehicles = []fakeVehicle{{id: "veh0", speed: 10, wait: 2, co2: 1000}}
	var out bytes.Buffer
	repl := &REPL{Controller: ctrl, In: strings.NewReader("metrics\nquit\n"), Out: &out}
	require.NoError(t, repl.Run())

	assert.Contains(t, out.String(), "=== Simulation Metrics ===")
	assert.Contains(t, out.String(), "Total Vehicles    : 1")
}

func TestREPL_BlankLinesIgnored(t *testing.T) {
	out, _, _ := runScript(t, "\n   \nquit\n")

	assert.NotContains(t, out, "Error:")
}

func TestREPL_EOFTerminates(t *testing.T) {
	// No quit: the script just runs out of input.
	out, _, _ := runScript(t, "add pothole -5 100\n")

	assert.Contains(t, out, "Added pothole with ID: pothole_0")
}

func TestREPL_Help(t *testing.T) {
	out, _, _ := runScript(t, "help\nquit\n")

	// usage shows up in the banner and again for help
	assert.Equal(t, 2, strings.Count(out, "add <type> <x> <y> [length]"))
}
