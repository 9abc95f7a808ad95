package chaos

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const defaultObstructionLength = 20.0

const usage = `Commands:
  add <type> <x> <y> [length] - Add obstruction (pothole/barricade/vendor)
  remove <id>                 - Remove obstruction by ID
  clear                       - Clear all obstructions
  list                        - List active obstructions
  metrics                     - Show current metrics
  help                        - Show this help
  quit                        - Exit

Example: add pothole -50 100 25
         add barricade 0 -200`

// REPL is the interactive command loop. Single-threaded and blocking:
// each command finishes its engine round-trips before the next prompt.
// In and Out are injected so the loop runs against buffers in tests.
type REPL struct {
	Controller *Controller
	In         io.Reader
	Out        io.Writer
}

// Run reads whitespace-tokenized command lines until quit or EOF.
// Command failures are printed and the loop continues; nothing aborts
// the session except quit, EOF, or a read error on In.
func (r *REPL) Run() error {
	fmt.Fprintln(r.Out, "=== SUMO Traffic Simulator Chaos Controller ===")
	fmt.Fprintln(r.Out, usage)

	sc := bufio.NewScanner(r.In)
	for {
		fmt.Fprint(r.Out, "\nChaos> ")
		if !sc.Scan() {
			break
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" {
			break
		}
		if err := r.dispatch(fields); err != nil {
			fmt.Fprintf(r.Out, "Error: %v\n", err)
		}
	}
	return sc.Err()
}

func (r *REPL) dispatch(fields []string) error {
	switch fields[0] {
	case "add":
		if len(fields) < 4 {
			return fmt.Errorf("usage: add <type> <x> <y> [length]")
		}
		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("x must be a number, got %q", fields[2])
		}
		y, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return fmt.Errorf("y must be a number, got %q", fields[3])
		}
		length := defaultObstructionLength
		if len(fields) > 4 {
			if length, err = strconv.ParseFloat(fields[4], 64); err != nil {
				return fmt.Errorf("length must be a number, got %q", fields[4])
			}
		}
		ob, err := r.Controller.Add(ObstructionType(fields[1]), x, y, length)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Out, "Added %s with ID: %s\n", ob.Type, ob.ID)

	case "remove":
		if len(fields) < 2 {
			return fmt.Errorf("usage: remove <id>")
		}
		if err := r.Controller.Remove(fields[1]); err != nil {
			return err
		}
		fmt.Fprintf(r.Out, "Removed obstruction %s\n", fields[1])

	case "clear":
		r.Controller.Clear()
		fmt.Fprintln(r.Out, "All obstructions cleared")

	case "list":
		obs := r.Controller.List()
		if len(obs) == 0 {
			fmt.Fprintln(r.Out, "No active obstructions")
			return nil
		}
		for _, ob := range obs {
			fmt.Fprintf(r.Out, "%s: %s on %s at (%g, %g)\n", ob.ID, ob.Type, ob.Lane, ob.X, ob.Y)
		}

	case "metrics":
		m, err := r.Controller.Metrics()
		if err != nil {
			return err
		}
		m.Print(r.Out)

	case "help":
		fmt.Fprintln(r.Out, usage)

	default:
		return fmt.Errorf("unknown command %q (type 'help' for usage)", fields[0])
	}
	return nil
}
