package chaos

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Precondition failures the command loop reports without aborting.
var (
	ErrNotRunning = errors.New("simulation not running")
	ErrNotFound   = errors.New("obstruction not found")
	ErrOffRoad    = errors.New("position is not on a valid road lane")
)

// Controller owns the obstruction registry and the engine lifecycle.
// All state lives on this struct; construct with NewController, scope
// the engine with Start/Stop. Registry state is process-lifetime only,
// never persisted.
type Controller struct {
	engine  Engine
	effects map[ObstructionType]Effects

	running      bool
	nextSeq      int // monotonic, never reused after deletion
	obstructions map[string]*Obstruction
	order        []string // insertion order, for list/clear
}

// NewController wires a controller to an engine. A nil effects table
// selects the built-in defaults.
func NewController(engine Engine, effects map[ObstructionType]Effects) *Controller {
	if effects == nil {
		effects = DefaultEffects()
	}
	return &Controller{
		engine:       engine,
		effects:      effects,
		obstructions: make(map[string]*Obstruction),
	}
}

// Running reports whether the simulation is active.
func (c *Controller) Running() bool { return c.running }

// Start launches the external simulation and marks the controller
// running. Launch failures are returned, not retried.
func (c *Controller) Start(cfgPath string, gui bool) error {
	if c.running {
		return errors.New("simulation already running")
	}
	if err := c.engine.Start(cfgPath, gui); err != nil {
		return fmt.Errorf("starting simulation: %w", err)
	}
	c.running = true
	logrus.Info("SUMO simulation started")
	return nil
}

// Stop shuts the simulation down. Calling it when not running is a
// no-op, so it is safe in a deferred finalization path.
func (c *Controller) Stop() error {
	if !c.running {
		return nil
	}
	c.running = false
	if err := c.engine.Close(); err != nil {
		return fmt.Errorf("stopping simulation: %w", err)
	}
	logrus.Info("SUMO simulation stopped")
	return nil
}

// Add places an obstruction of the given type at a world coordinate and
// applies its effect to the affected lane. The returned obstruction
// carries the generated ID.
func (c *Controller) Add(typ ObstructionType, x, y, length float64) (*Obstruction, error) {
	if !c.running {
		return nil, ErrNotRunning
	}
	edge, lane, ok := LocateLane(x, y)
	if !ok {
		return nil, fmt.Errorf("position (%g, %g): %w", x, y, ErrOffRoad)
	}

	ob := &Obstruction{
		ID:      fmt.Sprintf("%s_%d", typ, c.nextSeq),
		Type:    typ,
		Edge:    edge,
		Lane:    lane,
		X:       x,
		Y:       y,
		Length:  length,
		Effects: c.effects[typ], // unknown types get the zero record
	}
	if err := c.apply(ob); err != nil {
		return nil, err
	}
	c.nextSeq++
	c.obstructions[ob.ID] = ob
	c.order = append(c.order, ob.ID)
	return ob, nil
}

// apply issues the engine mutation for the obstruction's type and
// snapshots the displaced lane state for exact restoration on removal.
func (c *Controller) apply(ob *Obstruction) error {
	switch ob.Type {
	case Pothole, Vendor:
		current, err := c.engine.LaneMaxSpeed(ob.Lane)
		if err != nil {
			return fmt.Errorf("reading max speed of %s: %w", ob.Lane, err)
		}
		reduced := current * (1 - ob.Effects.SpeedReduction)
		if err := c.engine.SetLaneMaxSpeed(ob.Lane, reduced); err != nil {
			return fmt.Errorf("capping speed on %s: %w", ob.Lane, err)
		}
		ob.restore = laneSnapshot{maxSpeed: current, hasSpeed: true}
		logrus.Infof("%s placed on %s: speed reduced to %.1f m/s", ob.Type, ob.Lane, reduced)

	case Barricade:
		allowed, err := c.engine.LaneAllowed(ob.Lane)
		if err != nil {
			return fmt.Errorf("reading allowed classes of %s: %w", ob.Lane, err)
		}
		if err := c.engine.SetLaneAllowed(ob.Lane, nil); err != nil {
			return fmt.Errorf("blocking %s: %w", ob.Lane, err)
		}
		ob.restore = laneSnapshot{allowed: allowed, hasAllowed: true}
		logrus.Infof("barricade placed on %s: lane blocked", ob.Lane)

	default:
		// Unknown type: recorded in the registry but inert engine-side.
		logrus.Warnf("obstruction type %q has no engine-side effect", ob.Type)
	}
	return nil
}

// Remove reverts an obstruction's engine mutation and deletes it from
// the registry. A failed revert leaves the entry registered.
func (c *Controller) Remove(id string) error {
	ob, ok := c.obstructions[id]
	if !ok {
		return fmt.Errorf("obstruction %s: %w", id, ErrNotFound)
	}
	if err := c.revert(ob); err != nil {
		return err
	}
	delete(c.obstructions, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	logrus.Infof("removed obstruction %s from %s", id, ob.Lane)
	return nil
}

// revert restores the lane state snapshotted when the obstruction was
// applied.
func (c *Controller) revert(ob *Obstruction) error {
	if ob.restore.hasSpeed {
		if err := c.engine.SetLaneMaxSpeed(ob.Lane, ob.restore.maxSpeed); err != nil {
			return fmt.Errorf("restoring speed on %s: %w", ob.Lane, err)
		}
	}
	if ob.restore.hasAllowed {
		if err := c.engine.SetLaneAllowed(ob.Lane, ob.restore.allowed); err != nil {
			return fmt.Errorf("restoring allowed classes on %s: %w", ob.Lane, err)
		}
	}
	return nil
}

// Clear removes every obstruction in insertion order. Each removal is
// attempted independently; failures are logged and the rest proceed,
// with no rollback.
func (c *Controller) Clear() {
	for _, id := range append([]string(nil), c.order...) {
		if err := c.Remove(id); err != nil {
			logrus.Warnf("clear: %v", err)
		}
	}
}

// List returns the active obstructions in insertion order.
func (c *Controller) List() []*Obstruction {
	out := make([]*Obstruction, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.obstructions[id])
	}
	return out
}
