// Package solver computes the fixed rigid transform between two
// independently tracked frame chains from synchronized pose samples, the
// classical AX=XB hand-eye problem. The implementation follows Tsai & Lenz:
// rotation first from a linear system over relative-motion rotation
// vectors, then translation from the resulting normal equations.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/robogrid/handeye/pkg/geometry"
)

var (
	// ErrTooFewMotions is returned when the sample sequences yield fewer
	// than two relative motions, which underdetermines the rotation.
	ErrTooFewMotions = errors.New("need at least 3 samples (2 relative motions)")

	// ErrMismatchedSequences is returned when the two sequences differ in
	// length.
	ErrMismatchedSequences = errors.New("robot and optical sequences differ in length")

	// ErrDegenerateMotion is returned when the sampled motions do not
	// constrain the calibration (e.g. all rotations about one axis).
	ErrDegenerateMotion = errors.New("sampled motions are degenerate")
)

// TsaiLenz solves AX=XB over the relative motions of two synchronized pose
// sequences. The zero value is ready to use.
type TsaiLenz struct{}

// Solve estimates X such that for every pair of sample indices i, j:
//
//	robot_i * X * optical_i == robot_j * X * optical_j
//
// robot holds base->tool transforms, optical holds the tracked-chain
// transforms captured at the same instants, index for index.
func (TsaiLenz) Solve(robot, optical []geometry.RigidTransform) (geometry.RigidTransform, error) {
	if len(robot) != len(optical) {
		return geometry.RigidTransform{}, ErrMismatchedSequences
	}
	if len(robot) < 3 {
		return geometry.RigidTransform{}, ErrTooFewMotions
	}

	// Relative motions between consecutive samples. The invariance above
	// gives A_i X = X B_i with A_i from the robot chain and B_i from the
	// optical chain.
	n := len(robot) - 1
	motA := make([]geometry.RigidTransform, n)
	motB := make([]geometry.RigidTransform, n)
	for i := 0; i < n; i++ {
		motA[i] = robot[i+1].Inverse().Mul(robot[i])
		motB[i] = optical[i+1].Mul(optical[i].Inverse())
	}

	rot, err := solveRotation(motA, motB)
	if err != nil {
		return geometry.RigidTransform{}, err
	}

	trans, err := solveTranslation(motA, motB, rot)
	if err != nil {
		return geometry.RigidTransform{}, err
	}

	return geometry.RigidTransform{Translation: trans, Rotation: rot}, nil
}

// solveRotation accumulates skew(pA+pB) x = pB-pA over all motions into
// 3x3 normal equations and recovers the rotation from the modified
// Rodrigues solution.
func solveRotation(motA, motB []geometry.RigidTransform) (geometry.Quaternion, error) {
	var m mat3
	var c vec3
	for i := range motA {
		pa := motA[i].Rotation.RotationVector()
		pb := motB[i].Rotation.RotationVector()
		s := skew(pa.Add(pb))
		d := vec3{pb.X - pa.X, pb.Y - pa.Y, pb.Z - pa.Z}
		m = m.add(s.transpose().mul(s))
		c = c.add(s.transpose().apply(d))
	}

	x, err := solve3x3(m, c)
	if err != nil {
		return geometry.Quaternion{}, fmt.Errorf("%w: %v", ErrDegenerateMotion, err)
	}

	p := geometry.Vec3{X: x[0], Y: x[1], Z: x[2]}
	scale := 2 / math.Sqrt(1+p.Dot(p))
	return geometry.QuaternionFromRotationVector(p.Scale(scale)), nil
}

// solveTranslation solves (R_Ai - I) t = R_X t_Bi - t_Ai in the
// least-squares sense with the rotation already fixed.
func solveTranslation(motA, motB []geometry.RigidTransform, rot geometry.Quaternion) (geometry.Vec3, error) {
	var m mat3
	var c vec3
	for i := range motA {
		l := rotationMatrix(motA[i].Rotation).sub(identity3())
		rhs := rot.Rotate(motB[i].Translation).Sub(motA[i].Translation)
		d := vec3{rhs.X, rhs.Y, rhs.Z}
		m = m.add(l.transpose().mul(l))
		c = c.add(l.transpose().apply(d))
	}

	x, err := solve3x3(m, c)
	if err != nil {
		return geometry.Vec3{}, fmt.Errorf("%w: %v", ErrDegenerateMotion, err)
	}
	return geometry.Vec3{X: x[0], Y: x[1], Z: x[2]}, nil
}
