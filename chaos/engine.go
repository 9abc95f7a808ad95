package chaos

// Engine is the narrow control surface the controller needs from the
// external traffic simulation. chaos/traci.Client implements it against
// a live SUMO process; the test suite substitutes a scripted double.
type Engine interface {
	// Start launches the simulation with the given scenario
	// configuration file, graphical or headless.
	Start(cfgPath string, gui bool) error
	// Close shuts the simulation down. Safe to call when not started.
	Close() error

	// Per-lane state. Lane IDs follow SUMO's "<edge>_<index>" form.
	LaneMaxSpeed(laneID string) (float64, error)
	SetLaneMaxSpeed(laneID string, speed float64) error
	LaneAllowed(laneID string) ([]string, error)
	SetLaneAllowed(laneID string, classes []string) error

	// Per-vehicle telemetry.
	VehicleIDs() ([]string, error)
	VehicleSpeed(vehID string) (float64, error)
	VehicleAccumulatedWaitingTime(vehID string) (float64, error)
	VehicleCO2Emission(vehID string) (float64, error)
}
