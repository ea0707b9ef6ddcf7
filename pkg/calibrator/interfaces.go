package calibrator

import (
	"context"
	"time"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/frames"
	"github.com/robogrid/handeye/pkg/geometry"
)

// PoseProvider resolves a named frame pair to a transform at a given
// instant, with bounded waits for data that has not arrived yet. Satisfied
// by *frames.Buffer; substituted with doubles in tests.
type PoseProvider interface {
	// Lookup returns the transform for the pair at the given instant. A
	// zero instant means the latest known transform.
	Lookup(pair frames.Pair, at time.Time) (geometry.RigidTransform, error)
	// WaitUntilAvailable blocks until the pair has at least one
	// resolvable transform, the timeout elapses, or ctx is canceled.
	WaitUntilAvailable(ctx context.Context, pair frames.Pair, timeout time.Duration) error
	// WaitForInstant blocks until the pair can be resolved at the given
	// instant.
	WaitForInstant(ctx context.Context, pair frames.Pair, at time.Time, timeout time.Duration) error
}

// Solver computes the fixed transform between the two chains from parallel
// pose sequences (AX=XB). Calls are synchronous and may take a while.
type Solver interface {
	Solve(robot, optical []geometry.RigidTransform) (geometry.RigidTransform, error)
}

// PersistenceSink is one independent destination a computed calibration is
// written to.
type PersistenceSink interface {
	Name() string
	Write(res *calibration.Result) error
}
