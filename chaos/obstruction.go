package chaos

// ObstructionType enumerates the synthetic hazards the controller knows
// how to place. Unknown types are accepted and recorded but carry an
// empty effect record, so they mutate nothing engine-side.
type ObstructionType string

const (
	Pothole   ObstructionType = "pothole"
	Barricade ObstructionType = "barricade"
	Vendor    ObstructionType = "vendor"
)

// Effects is the fixed effect record applied when an obstruction of a
// given type is placed. CapacityReduction is advisory only: SUMO has no
// per-lane capacity knob, so it is recorded but never sent to the
// engine.
type Effects struct {
	SpeedReduction    float64 `yaml:"speed_reduction"`    // fraction of current max speed removed
	CapacityReduction float64 `yaml:"capacity_reduction"` // recorded, not enforced
	Blocked           bool    `yaml:"blocked"`            // close the lane to all vehicle classes
}

// DefaultEffects returns the built-in effect table matching the web
// demo's chaos layer. A scenario file may override individual entries.
func DefaultEffects() map[ObstructionType]Effects {
	return map[ObstructionType]Effects{
		Pothole:   {SpeedReduction: 0.5},
		Barricade: {Blocked: true},
		Vendor:    {SpeedReduction: 0.3, CapacityReduction: 0.5},
	}
}

// laneSnapshot captures the lane state an obstruction displaced, so
// removal can restore exactly what was there before. Only the fields
// the obstruction actually mutated are marked present.
type laneSnapshot struct {
	maxSpeed   float64
	allowed    []string
	hasSpeed   bool
	hasAllowed bool
}

// Obstruction is the single persistent entity of the controller: a
// hazard placed on one lane, alive from Add until Remove or Clear.
type Obstruction struct {
	ID      string
	Type    ObstructionType
	Edge    string  // approach edge, e.g. "north_approach"
	Lane    string  // full lane ID, e.g. "north_approach_1"
	X, Y    float64 // original world coordinate as supplied
	Length  float64 // nominal length in meters, not enforced
	Effects Effects

	restore laneSnapshot
}
