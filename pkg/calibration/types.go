package calibration

import (
	"github.com/robogrid/handeye/pkg/geometry"
)

// Sample is one synchronized pair of transforms: the robot chain
// (base->tool) and the optical chain (tracker origin->target), both looked
// up at the same instant. Mixing lookups from different instants would
// inject motion error into the calibration, so a Sample is only ever built
// from a single timestamped acquisition.
type Sample struct {
	Robot   geometry.RigidTransform `json:"robot"`
	Optical geometry.RigidTransform `json:"optical"`
}

// Snapshot is the full ordered projection of the sample list into two
// parallel sequences. It always represents the entire current store, never
// a delta, and the two sequences always have equal length.
type Snapshot struct {
	Robot   []geometry.RigidTransform `json:"robot"`
	Optical []geometry.RigidTransform `json:"optical"`
}

// Len returns the number of samples in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Robot)
}

// Result is one completed calibration outcome. It is immutable once
// constructed; the daemon keeps at most one, overwritten by each successful
// compute.
type Result struct {
	EyeOnHand bool                    `json:"eyeOnHand"`
	BaseFrame string                  `json:"baseFrame"`
	ToolFrame string                  `json:"toolFrame"`
	Transform geometry.RigidTransform `json:"transform"`
}
