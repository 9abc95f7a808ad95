package chaos

import (
	"fmt"
	"math"
)

// The demo network is a fixed four-armed intersection centered at the
// origin: 500 m arms, three lanes of ~3.25 m per approach. LocateLane
// is a hardcoded coordinate-to-topology map for that network, not a
// general geo-mapper.

// Approach edges of the intersection.
const (
	EdgeNorth = "north_approach"
	EdgeSouth = "south_approach"
	EdgeEast  = "east_approach"
	EdgeWest  = "west_approach"
)

const (
	roadHalfWidth  = 10.0 // inside the carriageway band of a road
	approachOffset = 15.0 // clear of the intersection box
	laneBoundary   = 3.25 // lateral offset of the outermost lane divider
)

// LocateLane maps a world coordinate to the approach edge and lane it
// falls on. ok is false for coordinates inside the intersection box or
// off both roads.
func LocateLane(x, y float64) (edge, lane string, ok bool) {
	switch {
	case math.Abs(x) < roadHalfWidth: // north-south road
		if y > approachOffset {
			return laneID(EdgeNorth, lateralIndex(x, false))
		}
		if y < -approachOffset {
			return laneID(EdgeSouth, lateralIndex(x, true))
		}
	case math.Abs(y) < roadHalfWidth: // east-west road
		if x > approachOffset {
			return laneID(EdgeEast, lateralIndex(y, true))
		}
		if x < -approachOffset {
			return laneID(EdgeWest, lateralIndex(y, false))
		}
	}
	return "", "", false
}

// lateralIndex picks the sub-lane from the offset across the road.
// Lane 0 is outermost; which side counts as outer flips per approach,
// so the threshold test mirrors around zero.
func lateralIndex(offset float64, outerPositive bool) int {
	if outerPositive {
		switch {
		case offset > laneBoundary:
			return 0
		case offset > 0:
			return 1
		default:
			return 2
		}
	}
	switch {
	case offset < -laneBoundary:
		return 0
	case offset < 0:
		return 1
	default:
		return 2
	}
}

func laneID(edge string, index int) (string, string, bool) {
	return edge, fmt.Sprintf("%s_%d", edge, index), true
}
