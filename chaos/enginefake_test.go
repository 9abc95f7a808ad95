package chaos

import (
	"fmt"
	"slices"
)

// demo lane defaults: what a fresh lane in the intersection scenario
// reports before any obstruction touches it.
const defaultLaneSpeed = 15.0

func defaultAllowed() []string {
	return []string{"passenger", "bus", "truck"}
}

type fakeVehicle struct {
	id    string
	speed float64
	wait  float64
	co2   float64
}

// fakeEngine is an in-memory Engine double. Lane state is materialized
// lazily at the demo defaults; failLanes forces engine-call errors on
// chosen lanes.
type fakeEngine struct {
	started  bool
	closed   bool
	cfgPath  string
	gui      bool
	speeds   map[string]float64
	allowed  map[string][]string
	vehicles []fakeVehicle

	failLanes map[string]bool // SetLaneMaxSpeed/SetLaneAllowed error on these
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		speeds:    make(map[string]float64),
		allowed:   make(map[string][]string),
		failLanes: make(map[string]bool),
	}
}

func (f *fakeEngine) Start(cfgPath string, gui bool) error {
	f.started = true
	f.cfgPath = cfgPath
	f.gui = gui
	return nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func (f *fakeEngine) laneSpeed(laneID string) float64 {
	if v, ok := f.speeds[laneID]; ok {
		return v
	}
	return defaultLaneSpeed
}

func (f *fakeEngine) laneAllowed(laneID string) []string {
	if v, ok := f.allowed[laneID]; ok {
		return slices.Clone(v)
	}
	return defaultAllowed()
}

func (f *fakeEngine) LaneMaxSpeed(laneID string) (float64, error) {
	return f.laneSpeed(laneID), nil
}

func (f *fakeEngine) SetLaneMaxSpeed(laneID string, speed float64) error {
	if f.failLanes[laneID] {
		return fmt.Errorf("engine refused lane %s", laneID)
	}
	f.speeds[laneID] = speed
	return nil
}

func (f *fakeEngine) LaneAllowed(laneID string) ([]string, error) {
	return f.laneAllowed(laneID), nil
}

func (f *fakeEngine) SetLaneAllowed(laneID string, classes []string) error {
	if f.failLanes[laneID] {
		return fmt.Errorf("engine refused lane %s", laneID)
	}
	f.allowed[laneID] = slices.Clone(classes)
	return nil
}

func (f *fakeEngine) VehicleIDs() ([]string, error) {
	ids := make([]string, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		ids = append(ids, v.id)
	}
	return ids, nil
}

func (f *fakeEngine) vehicle(id string) (fakeVehicle, error) {
	for _, v := range f.vehicles {
		if v.id == id {
			return v, nil
		}
	}
	return fakeVehicle{}, fmt.Errorf("unknown vehicle %s", id)
}

func (f *fakeEngine) VehicleSpeed(id string) (float64, error) {
	v, err := f.vehicle(id)
	return v.speed, err
}

func (f *fakeEngine) VehicleAccumulatedWaitingTime(id string) (float64, error) {
	v, err := f.vehicle(id)
	return v.wait, err
}

func (f *fakeEngine) VehicleCO2Emission(id string) (float64, error) {
	v, err := f.vehicle(id)
	return v.co2, err
}

// startedController returns a running controller over a fresh fake.
func startedController(t interface{ Fatalf(string, ...any) }) (*Controller, *fakeEngine) {
	engine := newFakeEngine()
	ctrl := NewController(engine, nil)
	if err := ctrl.Start("intersection.sumocfg", false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return ctrl, engine
}
